package inmemory

import (
	"context"
	"sync"
	"wishTracker/internal/logger"
	"wishTracker/internal/models/wish"
	repo "wishTracker/internal/repository"

	"github.com/google/uuid"
)

// WishStorage keeps wishes in insertion order. Every read hands out a copy.
type WishStorage struct {
	storage map[uuid.UUID]*wish.Wish
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewWishStorage() *WishStorage {
	return &WishStorage{
		storage: make(map[uuid.UUID]*wish.Wish),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *WishStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: in-memory storage is available")
	return nil
}

func (s *WishStorage) Create(ctx context.Context, wishToCreate *wish.Wish) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[wishToCreate.UUID]; ok {
		return repo.ErrAlreadyExists
	}

	s.storage[wishToCreate.UUID] = wishToCreate.Clone()
	s.ids = append(s.ids, wishToCreate.UUID)
	return nil
}

func (s *WishStorage) GetByID(ctx context.Context, id uuid.UUID) (*wish.Wish, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	wishToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return wishToGet.Clone(), nil
}

// List returns the whole collection in insertion order.
func (s *WishStorage) List(ctx context.Context) ([]*wish.Wish, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*wish.Wish, 0, len(s.ids))
	for _, id := range s.ids {
		res = append(res, s.storage[id].Clone())
	}
	return res, nil
}

func (s *WishStorage) UpdateStatus(ctx context.Context, id uuid.UUID, status wish.Status) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	wishExisted, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}
	wishExisted.Status = status
	return nil
}

func (s *WishStorage) AppendRemark(ctx context.Context, id uuid.UUID, remark wish.Remark) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	wishExisted, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}
	wishExisted.Remarks = append(wishExisted.Remarks, remark)
	return nil
}

// Delete drops the wish together with its remarks.
func (s *WishStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}
