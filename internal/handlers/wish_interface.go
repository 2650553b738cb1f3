package handlers

import (
	"context"
	"wishTracker/internal/filter"
	"wishTracker/internal/models/wish"

	"github.com/google/uuid"
)

type Service interface {
	HealthCheck(context.Context) error
	Categories() []string
	AddWish(ctx context.Context, title, category string, status wish.Status) (*wish.Wish, error)
	GetWish(context.Context, uuid.UUID) (*wish.Wish, error)
	ListWishes(context.Context) ([]*wish.Wish, error)
	FilterWishes(context.Context, filter.Criteria) ([]*wish.Wish, error)
	SetStatus(context.Context, uuid.UUID, wish.Status) (*wish.Wish, error)
	MoveToAchieved(context.Context, uuid.UUID) (*wish.Wish, error)
	DeleteWish(context.Context, uuid.UUID) error
	AddRemark(context.Context, uuid.UUID, string) (*wish.Remark, error)
}
