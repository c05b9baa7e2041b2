package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

type AuthService interface {
	Login(ctx context.Context, ns, email, password string) (*models.Session, error)
	Register(ctx context.Context, ns string, req transfer.RegisterRequest) (*models.Session, error)
	Logout(ctx context.Context, ns string) error
	Current(ctx context.Context, ns string) (*models.Session, error)
}

type authService struct {
	backend  AuthBackend
	sessions repository.SessionRepository
}

func NewAuthService(backend AuthBackend, sessions repository.SessionRepository) AuthService {
	return &authService{backend: backend, sessions: sessions}
}

func (s *authService) Login(ctx context.Context, ns, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := errors.New("email and password are required")
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := resp.User
	if user == nil {
		if user, err = s.backend.Me(ctx, resp.AccessToken); err != nil {
			return nil, err
		}
	}

	session := &models.Session{
		ID:       user.ID.String(),
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Token:    resp.AccessToken,
	}
	if session.Email == "" {
		session.Email = email
	}
	if err := s.sessions.Save(ctx, ns, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Register creates the account and signs straight in with it.
func (s *authService) Register(ctx context.Context, ns string, req transfer.RegisterRequest) (*models.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		err := errors.New("full name, email and password are required")
		slog.Info(err.Error())
		return nil, err
	}
	if _, err := s.backend.Register(ctx, req); err != nil {
		return nil, err
	}
	return s.Login(ctx, ns, req.Email, req.Password)
}

func (s *authService) Logout(ctx context.Context, ns string) error {
	return s.sessions.Clear(ctx, ns)
}

func (s *authService) Current(ctx context.Context, ns string) (*models.Session, error) {
	return s.sessions.Load(ctx, ns)
}
