package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTokenTTL = 12 * time.Hour

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, userID string) (User, error)
	CreateUser(ctx context.Context, email, passwordHash, role string, mentorID *string) (string, error)
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RevokeSession(ctx context.Context, userID, tokenHash string) error
	SessionValid(ctx context.Context, userID, tokenHash string) (bool, error)
}

type Service struct {
	Store    StoreAPI
	Secret   string
	TokenTTL time.Duration
	Now      func() time.Time
}

func NewService(store StoreAPI, secret string) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: DefaultTokenTTL, Now: time.Now}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Login verifies the password, opens a session and returns a signed token
// bound to it. Unknown emails and wrong passwords yield the same error.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	expires := s.Now().Add(s.TokenTTL)
	if err := s.Store.CreateSession(ctx, user.ID, HashToken(sessionID), expires); err != nil {
		return LoginResult{}, err
	}

	claims := Claims{UserID: user.ID, Role: user.Role, SessionID: sessionID}
	if user.MentorID != nil {
		claims.MentorID = *user.MentorID
	}
	token, err := GenerateToken(s.Secret, claims, s.TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.SessionID == "" {
		return ErrInvalidToken
	}
	return s.Store.RevokeSession(ctx, claims.UserID, HashToken(claims.SessionID))
}

// SessionActive satisfies the session check used by the auth middleware.
func (s *Service) SessionActive(ctx context.Context, userID, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.Store.SessionValid(ctx, userID, HashToken(sessionID))
}

func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	return s.Store.UserByID(ctx, userID)
}

// Register creates a login. Mentor logins must point at a mentor record.
func (s *Service) Register(ctx context.Context, email, password, role string, mentorID *string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	if !ValidRole(role) {
		return "", ErrInvalidRole
	}
	if role == RoleMentor && (mentorID == nil || *mentorID == "") {
		return "", ErrMentorRequired
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	return s.Store.CreateUser(ctx, email, hash, role, mentorID)
}
