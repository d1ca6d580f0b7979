package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/retrieval"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/storage/object"
	"docchat-backend/internal/shared/telemetry"
)

const (
	MaxTitleRunes        = 120
	MaxOriginalNameRunes = 120
	MaxMimeTypeRunes     = 80

	defaultOriginalName   = "document"
	defaultExtractTimeout = 2 * time.Minute
	octetStream           = "application/octet-stream"
)

// AllowedMimeTypes lists the upload types accepted at the boundary.
var AllowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"image/tiff":      true,
}

// Extractor turns raw bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string, opts extract.Options) (extract.Result, error)
}

// MessagePurger removes the chat history of a document.
type MessagePurger interface {
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
}

// Service contains business logic for documents.
type Service struct {
	Repo       Repo
	Store      object.ObjectStore
	Extractor  Extractor
	Summarizer *retrieval.Summarizer
	Messages   MessagePurger

	ExtractionTimeout time.Duration
	OCRLanguage       string
	Now               func() time.Time
}

// UploadInput is a validated multipart upload.
type UploadInput struct {
	Title        string
	OriginalName string
	// MimeType is the declared type; empty or octet-stream falls back to sniffing.
	MimeType string
	Data     []byte
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Upload extracts the file's text, stores the raw file and records the
// document with its extraction in a single write. Extraction failures are
// recorded on the document, never returned.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Document, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return Document{}, err
	}
	if len(in.Data) == 0 {
		return Document{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	originalName := strings.TrimSpace(in.OriginalName)
	if originalName == "" {
		originalName = defaultOriginalName
	}
	if utf8.RuneCountInString(originalName) > MaxOriginalNameRunes {
		return Document{}, fmt.Errorf("%w: originalName must be at most %d characters", ErrInvalidInput, MaxOriginalNameRunes)
	}
	mimeType, err := resolveMimeType(in.MimeType, in.Data)
	if err != nil {
		return Document{}, err
	}

	// Runs to completion even if the client goes away.
	ctx = context.WithoutCancel(ctx)

	ex := s.extract(ctx, in.Data, mimeType)

	stored, err := s.Store.Save(ctx, userID, originalName, bytes.NewReader(in.Data))
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		Title:            title,
		OriginalName:     originalName,
		MimeType:         mimeType,
		SizeBytes:        stored.Size,
		StorageProvider:  s.Store.Name(),
		StorageKey:       stored.Key,
		ExtractedText:    ex.Text,
		Summary:          ex.Summary,
		ErrorMessage:     ex.ErrorMessage,
		ExtractionMethod: ex.Method,
		PageCount:        ex.Pages,
		ExtractedAt:      &ex.At,
		CreatedAt:        ex.At,
		UpdatedAt:        ex.At,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		if delErr := s.Store.Delete(ctx, stored.Key); delErr != nil {
			telemetry.Warn("document.orphan_object", map[string]any{"storage_key": stored.Key, "err": delErr})
		}
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	metrics.IncDocumentUploaded()

	telemetry.Info("document.extracted", map[string]any{
		"document_id": doc.ID,
		"user_id":     userID,
		"mime_type":   mimeType,
		"method":      ex.Method,
		"pages":       ex.Pages,
		"chars":       utf8.RuneCountInString(ex.Text),
		"failed":      ex.ErrorMessage != "",
	})
	return doc, nil
}

func (s *Service) extract(ctx context.Context, data []byte, mimeType string) Extraction {
	timeout := s.ExtractionTimeout
	if timeout <= 0 {
		timeout = defaultExtractTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res extract.Result
	var err error
	if s.Extractor == nil {
		err = errors.New("extraction is not configured")
	} else {
		res, err = s.Extractor.Extract(ctx, data, mimeType, extract.Options{Language: s.OCRLanguage})
	}
	if err != nil {
		res = extract.Result{ErrorMessage: err.Error()}
	}

	ex := Extraction{
		Text:         res.Text,
		ErrorMessage: res.ErrorMessage,
		Method:       res.Method,
		Pages:        res.Pages,
		At:           s.now(),
	}
	if ex.Text != "" {
		ex.Summary = s.Summarizer.Summarize(ex.Text)
	}
	return ex
}

// Get returns a document owned by userID.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userID {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// List returns the user's documents newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Download opens the raw payload of an owned document. Callers close the reader.
func (s *Service) Download(ctx context.Context, userID, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Document{}, nil, fmt.Errorf("%w: file content not found", ErrNotFound)
		}
		return Document{}, nil, err
	}
	return doc, rc, nil
}

// Rename updates the title of an owned document.
func (s *Service) Rename(ctx context.Context, userID, documentID, title string) (Document, error) {
	clean, err := cleanTitle(title)
	if err != nil {
		return Document{}, err
	}
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return Document{}, err
	}
	now := s.now()
	if err := s.Repo.UpdateTitle(ctx, doc.ID, clean, now); err != nil {
		return Document{}, err
	}
	doc.Title = clean
	doc.UpdatedAt = now
	return doc, nil
}

// Delete removes the document's messages, its row and then its raw object.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return err
	}
	purged := 0
	if s.Messages != nil {
		if purged, err = s.Messages.DeleteByDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
	}
	if err := s.Repo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
		telemetry.Warn("document.orphan_object", map[string]any{"document_id": doc.ID, "storage_key": doc.StorageKey, "err": err})
	}
	telemetry.Info("document.deleted", map[string]any{"document_id": doc.ID, "user_id": userID, "messages": purged})
	return nil
}

func cleanTitle(title string) (string, error) {
	clean := strings.TrimSpace(title)
	if clean == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(clean) > MaxTitleRunes {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, MaxTitleRunes)
	}
	return clean, nil
}

func resolveMimeType(declared string, data []byte) (string, error) {
	if utf8.RuneCountInString(declared) > MaxMimeTypeRunes {
		return "", fmt.Errorf("%w: mimeType must be at most %d characters", ErrInvalidInput, MaxMimeTypeRunes)
	}
	mimeType := extract.CleanMimeType(declared)
	if mimeType == "" || mimeType == octetStream {
		mimeType = extract.CleanMimeType(mimetype.Detect(data).String())
	}
	if !AllowedMimeTypes[mimeType] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	return mimeType, nil
}
