package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
	"wishTracker/internal/filter"
	"wishTracker/internal/logger"
	"wishTracker/internal/models/wish"
	rep "wishTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	resourceWish = "wish"

	maxTitleLen    = 255
	maxCategoryLen = 128
)

// DefaultCategories is the selector shown when none are configured.
var DefaultCategories = []string{"Travel", "Gadgets", "Personal", "Career"}

// WishService owns every mutation of the wish collection.
// A failed operation never leaves the store changed.
type WishService struct {
	repo       WishRepository
	categories []string
	now        func() time.Time
}

func NewWishService(repo WishRepository, categories []string) WishService {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	return WishService{
		repo:       repo,
		categories: categories,
		now:        time.Now,
	}
}

func (s *WishService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("service health check: %w", err)
	}
	return nil
}

// Categories returns the selector values, the match-all sentinel first.
func (s *WishService) Categories() []string {
	res := make([]string, 0, len(s.categories)+1)
	res = append(res, filter.AllCategories)
	return append(res, s.categories...)
}

func (s *WishService) AddWish(ctx context.Context, title, category string, status wish.Status) (*wish.Wish, error) {
	title = strings.TrimSpace(title)
	category = strings.TrimSpace(category)

	if title == "" {
		return nil, NewValidationError("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return nil, NewValidationError("category", fmt.Sprintf("must be at most %d characters", maxCategoryLen))
	}
	if status != "" && !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	w := wish.New(title,
		wish.WithCategory(category),
		wish.WithStatus(status),
		wish.WithCreatedAt(s.now()),
	)

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create wish: %w", err)
	}

	logger.Info("Service: wish created",
		zap.String("wish_id", w.UUID.String()),
		zap.String("status", string(w.Status)))
	return w, nil
}

// Import stores pre-built wishes as they are, keeping ids and timestamps.
// Every entry is checked before any is stored; if a store call fails the
// wishes imported so far are removed again.
func (s *WishService) Import(ctx context.Context, wishes []*wish.Wish) error {
	for i, w := range wishes {
		if err := validateImported(w); err != nil {
			logger.Warn("Service: import rejected", zap.Int("entry", i), zap.Error(err))
			return err
		}
	}

	for i, w := range wishes {
		if err := s.repo.Create(ctx, w); err != nil {
			s.rollbackImport(ctx, wishes[:i])
			return fmt.Errorf("import wish %s: %w", w.UUID, err)
		}
	}
	logger.Info("Service: wishes imported", zap.Int("count", len(wishes)))
	return nil
}

func validateImported(w *wish.Wish) error {
	if w == nil {
		return NewValidationError("wish", "must not be nil")
	}
	if strings.TrimSpace(w.Title) == "" {
		return NewValidationError("title", "must not be empty")
	}
	if !w.Status.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", w.Status))
	}
	return nil
}

func (s *WishService) rollbackImport(ctx context.Context, stored []*wish.Wish) {
	for _, w := range stored {
		if err := s.repo.Delete(ctx, w.UUID); err != nil && !errors.Is(err, rep.ErrNotFound) {
			logger.Error("Service: import rollback failed", err, zap.String("wish_id", w.UUID.String()))
		}
	}
}

func (s *WishService) GetWish(ctx context.Context, id uuid.UUID) (*wish.Wish, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "get wish")
	}
	return w, nil
}

// ListWishes returns the full collection in insertion order.
func (s *WishService) ListWishes(ctx context.Context) ([]*wish.Wish, error) {
	wishes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wishes: %w", err)
	}
	return wishes, nil
}

// FilterWishes lists the wishes visible for c. An empty status selects the wish bucket.
func (s *WishService) FilterWishes(ctx context.Context, c filter.Criteria) ([]*wish.Wish, error) {
	if c.Status == "" {
		c.Status = wish.StatusWish
	}
	if !c.Status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", c.Status))
	}

	wishes, err := s.ListWishes(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(wishes, c), nil
}

func (s *WishService) SetStatus(ctx context.Context, id uuid.UUID, status wish.Status) (*wish.Wish, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, s.mapRepoError(err, id, "update status")
	}

	logger.Info("Service: status changed",
		zap.String("wish_id", id.String()),
		zap.String("status", string(status)))
	return s.GetWish(ctx, id)
}

func (s *WishService) MoveToAchieved(ctx context.Context, id uuid.UUID) (*wish.Wish, error) {
	return s.SetStatus(ctx, id, wish.StatusAchieved)
}

// DeleteWish is idempotent: deleting an unknown id succeeds.
func (s *WishService) DeleteWish(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: wish already absent", zap.String("wish_id", id.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete wish: %w", err)
	}
	logger.Info("Service: wish deleted", zap.String("wish_id", id.String()))
	return nil
}

func (s *WishService) AddRemark(ctx context.Context, id uuid.UUID, content string) (*wish.Remark, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidationError("content", "must not be empty")
	}

	remark := wish.NewRemark(content, s.now())
	if err := s.repo.AppendRemark(ctx, id, remark); err != nil {
		return nil, s.mapRepoError(err, id, "add remark")
	}

	logger.Info("Service: remark added",
		zap.String("wish_id", id.String()),
		zap.String("remark_id", remark.UUID.String()))
	return &remark, nil
}

func (s *WishService) mapRepoError(err error, id uuid.UUID, op string) error {
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: wish not found", zap.String("target_id", id.String()))
		return NewNotFound(resourceWish, id.String()).withCause(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
