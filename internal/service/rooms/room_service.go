package rooms

import (
	"context"
	"time"

	"github.com/dvalenz/roomreserve/internal/domain"
	"github.com/dvalenz/roomreserve/internal/repository"
)

type RoomUseCase interface {
	List(ctx context.Context) ([]domain.Room, error)
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

type RoomCache interface {
	GetRooms(ctx context.Context) ([]domain.Room, error)
	SetRooms(ctx context.Context, rooms []domain.Room) error
}

type RoomService struct {
	repo     repository.RoomRepository
	cache    RoomCache
	cacheTTL time.Duration
}

func NewRoomService(repo repository.RoomRepository, cache RoomCache, cacheTTL time.Duration) *RoomService {
	return &RoomService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *RoomService) List(ctx context.Context) ([]domain.Room, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRooms(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetRooms(ctx, rooms)
	}
	return rooms, nil
}

func (s *RoomService) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	return s.repo.GetByID(ctx, id)
}

var _ RoomUseCase = (*RoomService)(nil)
