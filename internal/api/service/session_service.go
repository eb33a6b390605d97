package service

import (
	"context"
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/repository"
	"ctchen222/tictactoe/internal/session"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = response.NewError(http.StatusUnauthorized, "invalid or expired token")
	ErrForbidden     = response.NewError(http.StatusForbidden, "token does not grant this session")
	ErrUnknownSession = response.NewError(http.StatusNotFound, "session not found")
)

// SessionClaims binds a token to one session.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionService creates sessions and guards access to them.
type SessionService interface {
	Create(ctx context.Context) (*models.CreateSessionResponse, error)
	Get(ctx context.Context, id, token string) (*session.Session, error)
	VerifyToken(token string) (string, error)
}

type sessionService struct {
	repo   repository.SessionRepository
	secret []byte
	ttl    time.Duration
}

// NewSessionService creates a new SessionService. Tokens live as long as ttl.
func NewSessionService(repo repository.SessionRepository, secret string, ttl time.Duration) SessionService {
	return &sessionService{repo: repo, secret: []byte(secret), ttl: ttl}
}

// Create stores a fresh session and signs a token for it.
func (s *sessionService) Create(ctx context.Context) (*models.CreateSessionResponse, error) {
	id := uuid.New().String()
	if err := s.repo.Save(ctx, session.New(id)); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := SessionClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.CreateSessionResponse{SessionID: id, Token: token, ExpiresAt: expiresAt.UTC()}, nil
}

// Get returns the session snapshot when token was issued for id.
func (s *sessionService) Get(ctx context.Context, id, token string) (*session.Session, error) {
	sid, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	if sid != id {
		return nil, ErrForbidden
	}

	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownSession
		}
		return nil, err
	}
	return sess, nil
}

// VerifyToken checks the signature and expiry and returns the session id.
func (s *sessionService) VerifyToken(tokenString string) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}
