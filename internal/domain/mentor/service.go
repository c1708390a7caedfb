package mentor

import "context"

type StoreAPI interface {
	List(ctx context.Context) ([]Mentor, error)
	ByTeam(ctx context.Context, team string) ([]Mentor, error)
	Get(ctx context.Context, id string) (Mentor, error)
	Create(ctx context.Context, in Input) (Mentor, error)
	Update(ctx context.Context, id string, in Input) (Mentor, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	Store StoreAPI
	// DefaultRate replaces an omitted base rate when positive.
	DefaultRate float64
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) normalize(in Input) (Input, error) {
	if in.BaseRate == 0 && s.DefaultRate > 0 {
		in.BaseRate = s.DefaultRate
	}
	return Normalize(in)
}

func (s *Service) List(ctx context.Context, team string) ([]Mentor, error) {
	if team != "" {
		return s.Store.ByTeam(ctx, team)
	}
	return s.Store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Mentor, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Mentor, error) {
	clean, err := s.normalize(in)
	if err != nil {
		return Mentor{}, err
	}
	return s.Store.Create(ctx, clean)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Mentor, error) {
	clean, err := s.normalize(in)
	if err != nil {
		return Mentor{}, err
	}
	return s.Store.Update(ctx, id, clean)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}
