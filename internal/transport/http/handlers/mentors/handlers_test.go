package mentorshandler

import (
	"context"
	"net/http"
	"testing"

	"mentordash/internal/domain/mentor"
	"mentordash/internal/transport/http/handlers/handlertest"
)

type stubMentors struct {
	mentors map[string]mentor.Mentor
	team    string
}

func newStub() *stubMentors {
	return &stubMentors{mentors: map[string]mentor.Mentor{
		"m1": {ID: "m1", Name: "Ada", Email: "ada@example.com", BaseRate: 10, Teams: []string{}},
		"m2": {ID: "m2", Name: "Grace", Email: "grace@example.com", BaseRate: 12, Teams: []string{"physics"}},
	}}
}

func (s *stubMentors) List(_ context.Context, team string) ([]mentor.Mentor, error) {
	s.team = team
	return []mentor.Mentor{s.mentors["m1"], s.mentors["m2"]}, nil
}

func (s *stubMentors) Get(_ context.Context, id string) (mentor.Mentor, error) {
	m, ok := s.mentors[id]
	if !ok {
		return mentor.Mentor{}, mentor.ErrNotFound
	}
	return m, nil
}

func (s *stubMentors) Create(_ context.Context, in mentor.Input) (mentor.Mentor, error) {
	clean, err := mentor.Normalize(in)
	if err != nil {
		return mentor.Mentor{}, err
	}
	for _, m := range s.mentors {
		if m.Email == clean.Email {
			return mentor.Mentor{}, mentor.ErrEmailTaken
		}
	}
	m := mentor.Mentor{ID: "m3", Name: clean.Name, Email: clean.Email, BaseRate: clean.BaseRate, Teams: clean.Teams}
	s.mentors[m.ID] = m
	return m, nil
}

func (s *stubMentors) Update(_ context.Context, id string, in mentor.Input) (mentor.Mentor, error) {
	if _, ok := s.mentors[id]; !ok {
		return mentor.Mentor{}, mentor.ErrNotFound
	}
	if len(in.Teams) > 0 && in.Teams[0] == "ghost" {
		return mentor.Mentor{}, mentor.ErrUnknownTeam
	}
	m := mentor.Mentor{ID: id, Name: in.Name, Email: in.Email, BaseRate: in.BaseRate}
	s.mentors[id] = m
	return m, nil
}

func (s *stubMentors) Delete(_ context.Context, id string) error {
	if _, ok := s.mentors[id]; !ok {
		return mentor.ErrNotFound
	}
	delete(s.mentors, id)
	return nil
}

func TestAdminListsWithTeamFilter(t *testing.T) {
	stub := newStub()
	router := handlertest.Router(NewHandler(stub, nil), handlertest.Admin)

	rec := handlertest.Do(t, router, http.MethodGet, "/mentors?team=physics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []mentor.Mentor
	handlertest.Decode(t, rec, &got)
	if len(got) != 2 || stub.team != "physics" {
		t.Fatalf("unexpected list %+v team=%q", got, stub.team)
	}
}

func TestMentorSeesOnlyThemselves(t *testing.T) {
	router := handlertest.Router(NewHandler(newStub(), nil), handlertest.Mentor)

	rec := handlertest.Do(t, router, http.MethodGet, "/mentors", nil)
	var got []mentor.Mentor
	handlertest.Decode(t, rec, &got)
	if len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("expected only own record, got %+v", got)
	}

	if rec := handlertest.Do(t, router, http.MethodGet, "/mentors/m2", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another mentor, got %d", rec.Code)
	}
	if rec := handlertest.Do(t, router, http.MethodGet, "/mentors/m1", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for own record, got %d", rec.Code)
	}
	if rec := handlertest.Do(t, router, http.MethodDelete, "/mentors/m1", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected mentors to be unable to delete, got %d", rec.Code)
	}
}

func TestAnonymousIsRejected(t *testing.T) {
	router := handlertest.Router(NewHandler(newStub(), nil), nil)
	if rec := handlertest.Do(t, router, http.MethodGet, "/mentors", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateMentor(t *testing.T) {
	router := handlertest.Router(NewHandler(newStub(), nil), handlertest.Admin)

	rec := handlertest.Do(t, router, http.MethodPost, "/mentors", map[string]any{"name": "Linus", "email": "linus@example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created mentor.Mentor
	handlertest.Decode(t, rec, &created)
	if created.BaseRate != 10 {
		t.Fatalf("expected default base rate, got %v", created.BaseRate)
	}

	rec = handlertest.Do(t, router, http.MethodPost, "/mentors", map[string]any{"name": "", "email": "bad"})
	env := handlertest.Decode(t, rec, nil)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation error, got %d %+v", rec.Code, env.Error)
	}

	rec = handlertest.Do(t, router, http.MethodPost, "/mentors", map[string]any{"name": "Ada", "email": "ada@example.com"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpdateAndDeleteMentor(t *testing.T) {
	router := handlertest.Router(NewHandler(newStub(), nil), handlertest.Admin)

	rec := handlertest.Do(t, router, http.MethodPut, "/mentors/m1", map[string]any{"name": "Ada", "email": "ada@example.com", "teams": []string{"ghost"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown team, got %d", rec.Code)
	}
	if rec := handlertest.Do(t, router, http.MethodPut, "/mentors/nope", map[string]any{"name": "A", "email": "a@b.co"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := handlertest.Do(t, router, http.MethodDelete, "/mentors/m2", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := handlertest.Do(t, router, http.MethodDelete, "/mentors/m2", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}
