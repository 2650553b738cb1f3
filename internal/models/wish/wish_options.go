package wish

import (
	"time"

	"github.com/google/uuid"
)

type WishOption func(*Wish)

// New builds a wish with a fresh id and creation time. Options returning nil are skipped.
func New(title string, opts ...WishOption) *Wish {
	w := &Wish{
		UUID:      uuid.New(),
		Title:     title,
		Status:    StatusWish,
		CreatedAt: time.Now(),
		Remarks:   []Remark{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

func WithCategory(category string) WishOption {
	return func(w *Wish) {
		w.Category = category
	}
}

func WithStatus(status Status) WishOption {
	if status == "" {
		return nil
	}
	return func(w *Wish) {
		w.Status = status
	}
}

func WithCreatedAt(createdAt time.Time) WishOption {
	if createdAt.IsZero() {
		return nil
	}
	return func(w *Wish) {
		w.CreatedAt = createdAt
	}
}

func WithRemarks(remarks ...Remark) WishOption {
	return func(w *Wish) {
		w.Remarks = append(w.Remarks, remarks...)
	}
}

func NewRemark(content string, createdAt time.Time) Remark {
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return Remark{
		UUID:      uuid.New(),
		Content:   content,
		CreatedAt: createdAt,
	}
}
