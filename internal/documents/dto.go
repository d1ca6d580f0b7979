package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	OriginalName  string    `json:"originalName"`
	MimeType      string    `json:"mimeType"`
	SizeBytes     int64     `json:"sizeBytes"`
	ExtractedText string    `json:"extractedText"`
	Summary       string    `json:"summary,omitempty"`
	ErrorMessage  *string   `json:"errorMessage"`
	Method        string    `json:"extractionMethod,omitempty"`
	PageCount     int       `json:"pageCount,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DocumentSummary is the compact listing entry embedded in user profiles.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type updateDocumentRequest struct {
	Title string `json:"title"`
}

func toResponse(doc Document) DocumentResponse {
	resp := DocumentResponse{
		ID:            doc.ID,
		Title:         doc.Title,
		OriginalName:  doc.OriginalName,
		MimeType:      doc.MimeType,
		SizeBytes:     doc.SizeBytes,
		ExtractedText: doc.ExtractedText,
		Summary:       doc.Summary,
		Method:        doc.ExtractionMethod,
		PageCount:     doc.PageCount,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	if doc.ErrorMessage != "" {
		msg := doc.ErrorMessage
		resp.ErrorMessage = &msg
	}
	return resp
}

// ToSummary converts a document into its listing entry.
func ToSummary(doc Document) DocumentSummary {
	return DocumentSummary{ID: doc.ID, Title: doc.Title, CreatedAt: doc.CreatedAt}
}
