package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	users    map[string]User
	sessions map[string]time.Time
	revoked  map[string]bool
	logins   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]User{}, sessions: map[string]time.Time{}, revoked: map[string]bool{}}
}

func (m *memoryStore) FindActiveUserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrInvalidCredentials
}

func (m *memoryStore) UserByID(_ context.Context, userID string) (User, error) {
	u, ok := m.users[userID]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (m *memoryStore) CreateUser(_ context.Context, email, passwordHash, role string, mentorID *string) (string, error) {
	for _, u := range m.users {
		if u.Email == email {
			return "", ErrUserExists
		}
	}
	id := fmt.Sprintf("u%d", len(m.users)+1)
	m.users[id] = User{ID: id, Email: email, Role: role, MentorID: mentorID, PasswordHash: passwordHash}
	return id, nil
}

func (m *memoryStore) CreateSession(_ context.Context, userID, tokenHash string, expires time.Time) error {
	m.sessions[userID+"/"+tokenHash] = expires
	return nil
}

func (m *memoryStore) UpdateLastLogin(context.Context, string) error {
	m.logins++
	return nil
}

func (m *memoryStore) RevokeSession(_ context.Context, userID, tokenHash string) error {
	m.revoked[userID+"/"+tokenHash] = true
	return nil
}

func (m *memoryStore) SessionValid(_ context.Context, userID, tokenHash string) (bool, error) {
	key := userID + "/" + tokenHash
	_, ok := m.sessions[key]
	return ok && !m.revoked[key], nil
}

func TestLoginIssuesSessionBoundToken(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, "secret")
	mentorID := "m-1"
	_, err := svc.Register(context.Background(), "ada@example.com", "pw-123456", RoleMentor, &mentorID)
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "ada@example.com", "pw-123456")
	require.NoError(t, err)
	assert.Equal(t, 1, store.logins)

	claims, err := ParseToken("secret", res.Token)
	require.NoError(t, err)
	assert.Equal(t, RoleMentor, claims.Role)
	assert.Equal(t, mentorID, claims.MentorID)

	ok, err := svc.SessionActive(context.Background(), claims.UserID, claims.SessionID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Logout(context.Background(), claims))
	ok, err = svc.SessionActive(context.Background(), claims.UserID, claims.SessionID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, "secret")
	_, err := svc.Register(context.Background(), "root@example.com", "pw-123456", RoleAdmin, nil)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "root@example.com", "nope")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), "ghost@example.com", "pw-123456")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), "", "")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, 0, store.logins)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newMemoryStore(), "secret")
	_, err := svc.Register(context.Background(), "x@example.com", "pw", "owner", nil)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Register(context.Background(), "x@example.com", "pw", RoleMentor, nil)
	assert.ErrorIs(t, err, ErrMentorRequired)

	_, err = svc.Register(context.Background(), "x@example.com", "pw", RoleAdmin, nil)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "x@example.com", "pw", RoleAdmin, nil)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogoutWithoutSession(t *testing.T) {
	svc := NewService(newMemoryStore(), "secret")
	assert.ErrorIs(t, svc.Logout(context.Background(), &Claims{UserID: "u1"}), ErrInvalidToken)
	ok, err := svc.SessionActive(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.False(t, ok)
}
