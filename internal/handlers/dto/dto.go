package dto

import (
	"time"
	"wishTracker/internal/models/wish"

	"github.com/google/uuid"
)

type CreateWishRequest struct {
	Title    string      `json:"title" validate:"required"`
	Category string      `json:"category"`
	Status   wish.Status `json:"status" validate:"omitempty,wish_status"`
}

type UpdateStatusRequest struct {
	Status wish.Status `json:"status" validate:"required,wish_status"`
}

type AddRemarkRequest struct {
	Content string `json:"content" validate:"required"`
}

type RemarkResponse struct {
	UUID      uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type WishResponse struct {
	UUID        uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Status      string           `json:"status"`
	Category    string           `json:"category"`
	CreatedAt   time.Time        `json:"created_at"`
	RemarkCount int              `json:"remark_count"`
	Remarks     []RemarkResponse `json:"remarks"`
}

func FromRemark(r wish.Remark) RemarkResponse {
	return RemarkResponse{
		UUID:      r.UUID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

func FromWish(w *wish.Wish) WishResponse {
	remarks := make([]RemarkResponse, len(w.Remarks))
	for i, r := range w.Remarks {
		remarks[i] = FromRemark(r)
	}
	return WishResponse{
		UUID:        w.UUID,
		Title:       w.Title,
		Status:      string(w.Status),
		Category:    w.Category,
		CreatedAt:   w.CreatedAt,
		RemarkCount: len(w.Remarks),
		Remarks:     remarks,
	}
}

func FromWishList(wishes []*wish.Wish) []WishResponse {
	result := make([]WishResponse, len(wishes))
	for i, w := range wishes {
		result[i] = FromWish(w)
	}
	return result
}
