package mentor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mentors map[string]Mentor
	byTeam  string
	created []Input
}

func (m *memoryStore) List(context.Context) ([]Mentor, error) {
	out := []Mentor{}
	for _, v := range m.mentors {
		out = append(out, v)
	}
	return out, nil
}

func (m *memoryStore) ByTeam(_ context.Context, team string) ([]Mentor, error) {
	m.byTeam = team
	return []Mentor{}, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Mentor, error) {
	v, ok := m.mentors[id]
	if !ok {
		return Mentor{}, ErrNotFound
	}
	return v, nil
}

func (m *memoryStore) Create(_ context.Context, in Input) (Mentor, error) {
	m.created = append(m.created, in)
	return Mentor{ID: "new", Name: in.Name, Email: in.Email, BaseRate: in.BaseRate, Teams: in.Teams}, nil
}

func (m *memoryStore) Update(_ context.Context, id string, in Input) (Mentor, error) {
	if _, ok := m.mentors[id]; !ok {
		return Mentor{}, ErrNotFound
	}
	return Mentor{ID: id, Name: in.Name}, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	if _, ok := m.mentors[id]; !ok {
		return ErrNotFound
	}
	delete(m.mentors, id)
	return nil
}

func TestServiceCreateNormalizes(t *testing.T) {
	store := &memoryStore{mentors: map[string]Mentor{}}
	svc := NewService(store)

	m, err := svc.Create(context.Background(), Input{Name: " Grace ", Email: "GRACE@navy.mil"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", m.Name)
	assert.Equal(t, 10.0, m.BaseRate)
	require.Len(t, store.created, 1)
	assert.Equal(t, "grace@navy.mil", store.created[0].Email)
}

func TestServiceCreateRejectsInvalid(t *testing.T) {
	store := &memoryStore{mentors: map[string]Mentor{}}
	_, err := NewService(store).Create(context.Background(), Input{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, store.created)
}

func TestServiceListByTeam(t *testing.T) {
	store := &memoryStore{mentors: map[string]Mentor{"1": {ID: "1"}}}
	svc := NewService(store)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Empty(t, store.byTeam)

	_, err = svc.List(context.Background(), "physics")
	require.NoError(t, err)
	assert.Equal(t, "physics", store.byTeam)
}

func TestServiceUpdateAndDeleteMissing(t *testing.T) {
	svc := NewService(&memoryStore{mentors: map[string]Mentor{}})
	_, err := svc.Update(context.Background(), "nope", Input{Name: "A", Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "nope"), ErrNotFound)
}

func TestServiceAppliesConfiguredDefaultRate(t *testing.T) {
	store := &memoryStore{mentors: map[string]Mentor{}}
	svc := NewService(store)
	svc.DefaultRate = 12.5

	created, err := svc.Create(context.Background(), Input{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 12.5, created.BaseRate)

	created, err = svc.Create(context.Background(), Input{Name: "Bob", Email: "bob@example.com", BaseRate: 8})
	require.NoError(t, err)
	assert.Equal(t, 8.0, created.BaseRate)
}
