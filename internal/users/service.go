package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"docchat-backend/internal/documents"
	"docchat-backend/internal/shared/telemetry"
)

const (
	BcryptCost        = 10
	MinPasswordLength = 6
	MaxNameRunes      = 120
)

// TokenSigner issues access tokens for authenticated users.
type TokenSigner interface {
	Sign(userID, email string) (string, error)
}

// DocumentLister lists the documents a user owns.
type DocumentLister interface {
	List(ctx context.Context, userID string) ([]documents.Document, error)
}

type Service struct {
	Repo      Repo
	Signer    TokenSigner
	Documents DocumentLister
	Now       func() time.Time
}

func NewService(repo Repo, signer TokenSigner, docs DocumentLister) *Service {
	return &Service{Repo: repo, Signer: signer, Documents: docs}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Profile is a user with the documents they own.
type Profile struct {
	User      User
	Documents []documents.Document
}

// Signup creates an account and returns it with an access token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (User, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameRunes {
		return User{}, "", fmt.Errorf("%w: name is required and must be at most %d characters", ErrInvalidInput, MaxNameRunes)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return User{}, "", err
	}
	if len(in.Password) < MinPasswordLength {
		return User{}, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return User{}, "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, "", err
	}
	token, err := s.Signer.Sign(user.ID, user.Email)
	if err != nil {
		return User{}, "", fmt.Errorf("sign token: %w", err)
	}
	telemetry.Info("user.signup", map[string]any{"user_id": user.ID})
	return user, token, nil
}

// Login checks credentials and returns the user with a fresh access token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		telemetry.Warn("user.login_failed", map[string]any{"user_id": user.ID})
		return User{}, "", ErrInvalidCredentials
	}
	token, err := s.Signer.Sign(user.ID, user.Email)
	if err != nil {
		return User{}, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

// Profile returns the user and their documents, newest first.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	var docs []documents.Document
	if s.Documents != nil {
		if docs, err = s.Documents.List(ctx, userID); err != nil {
			return Profile{}, fmt.Errorf("list documents: %w", err)
		}
	}
	return Profile{User: user, Documents: docs}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	return email, nil
}
