package service

import (
	"context"
	"wishTracker/internal/models/wish"

	"github.com/google/uuid"
)

type WishRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *wish.Wish) error
	GetByID(context.Context, uuid.UUID) (*wish.Wish, error)
	List(context.Context) ([]*wish.Wish, error)
	UpdateStatus(context.Context, uuid.UUID, wish.Status) error
	AppendRemark(context.Context, uuid.UUID, wish.Remark) error
	Delete(context.Context, uuid.UUID) error
}
