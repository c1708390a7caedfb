package task

import (
	"context"

	"mentordash/internal/domain/payment"
)

type StoreAPI interface {
	Create(ctx context.Context, in Input) (Task, error)
	Get(ctx context.Context, id string) (Task, error)
	ListRecords(ctx context.Context, mentorID string, window payment.Window) ([]Task, error)
	Delete(ctx context.Context, id string) (Task, error)
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) Create(ctx context.Context, in Input) (Task, error) {
	clean, err := Normalize(in)
	if err != nil {
		return Task{}, err
	}
	return s.Store.Create(ctx, clean)
}

func (s *Service) Get(ctx context.Context, id string) (Task, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) ListByMentor(ctx context.Context, mentorID string, window payment.Window) ([]Task, error) {
	return s.Store.ListRecords(ctx, mentorID, window)
}

func (s *Service) Delete(ctx context.Context, id string) (Task, error) {
	return s.Store.Delete(ctx, id)
}
