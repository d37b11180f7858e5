package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/guard"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

type lobbyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Lobby, error)
	Create(ctx context.Context, lobby *models.Lobby) error
	Update(ctx context.Context, lobby *models.Lobby) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p query.Params) ([]models.Lobby, error)
	Count(ctx context.Context, filters query.Filters) (int, error)
}

type lobbyAlgorithmResolver interface {
	FindByID(ctx context.Context, id string) (*models.Algorithm, error)
}

type lobbyCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetrics interface {
	RecordCacheOperation(hit bool)
}

// LobbyService provides lobby management use cases.
type LobbyService struct {
	repo       lobbyRepository
	algorithms lobbyAlgorithmResolver
	cache      lobbyCache
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
	events     sessionEvents
	metrics    cacheMetrics
}

// NewLobbyService constructs a LobbyService instance. cache and metrics may
// be nil.
func NewLobbyService(repo lobbyRepository, algorithms lobbyAlgorithmResolver, cache lobbyCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger, events sessionEvents, metrics cacheMetrics) *LobbyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LobbyService{repo: repo, algorithms: algorithms, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger, events: events, metrics: metrics}
}

// Get returns a lobby by id.
func (s *LobbyService) Get(ctx context.Context, id string) (*models.Lobby, error) {
	lobby, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lobby not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lobby")
	}
	return lobby, nil
}

// Create opens a new lobby hosted by the subject.
func (s *LobbyService) Create(ctx context.Context, subject *models.Subject, req dto.CreateLobbyRequest) (*models.Lobby, error) {
	if err := guard.Require(subject, models.RoleUser); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lobby payload")
	}

	if _, err := s.algorithms.FindByID(ctx, req.AlgorithmID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown algorithm")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve algorithm")
	}

	lobby := &models.Lobby{
		HostID:      subject.ID,
		AlgorithmID: req.AlgorithmID,
		Name:        req.Name,
		Status:      models.LobbyCreated,
	}
	if err := s.repo.Create(ctx, lobby); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lobby")
	}

	s.invalidateListings(ctx)
	if s.events != nil {
		s.events.Publish(ctx, "lobby.created", map[string]string{"lobby_id": lobby.ID, "host_id": lobby.HostID})
	}
	return lobby, nil
}

// Update changes a lobby. The host or a moderator may edit it; an empty
// payload is rejected.
func (s *LobbyService) Update(ctx context.Context, subject *models.Subject, id string, req dto.UpdateLobbyRequest) (*models.Lobby, error) {
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrNoData, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lobby payload")
	}

	lobby, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := guard.RequireOr(subject, models.RoleModerator, subject != nil && subject.ID == lobby.HostID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		lobby.Name = *req.Name
	}
	if req.AlgorithmID != nil {
		if _, err := s.algorithms.FindByID(ctx, *req.AlgorithmID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown algorithm")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve algorithm")
		}
		lobby.AlgorithmID = *req.AlgorithmID
	}

	closed := false
	if req.Status != nil {
		next := models.LobbyStatus(*req.Status)
		closed = next == models.LobbyArchived && lobby.Status != models.LobbyArchived
		lobby.Status = next
	}

	if err := s.repo.Update(ctx, lobby); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lobby")
	}

	s.invalidateListings(ctx)
	if closed && s.events != nil {
		s.events.Publish(ctx, "lobby.closed", map[string]string{"lobby_id": lobby.ID, "host_id": lobby.HostID})
	}
	return lobby, nil
}

// Delete removes a lobby. Host or moderator only.
func (s *LobbyService) Delete(ctx context.Context, subject *models.Subject, id string) error {
	lobby, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := guard.RequireOr(subject, models.RoleModerator, subject != nil && subject.ID == lobby.HostID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lobby")
	}

	s.invalidateListings(ctx)
	return nil
}

// List returns lobbies matching the filters, served from cache when a warm
// entry exists.
func (s *LobbyService) List(ctx context.Context, p query.Params) ([]models.Lobby, error) {
	key := listingKey(p)
	if s.cache != nil {
		var cached []models.Lobby
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordCache(true)
			return cached, nil
		}
		s.recordCache(false)
	}

	lobbies, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lobbies")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, lobbies, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache lobby listing", zap.Error(err))
		}
	}
	return lobbies, nil
}

// Count returns the number of lobbies matching the filters.
func (s *LobbyService) Count(ctx context.Context, filters query.Filters) (int, error) {
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count lobbies")
	}
	return total, nil
}

func (s *LobbyService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func (s *LobbyService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "lobbies:*"); err != nil {
		s.logger.Warn("failed to invalidate lobby listings", zap.Error(err))
	}
}

// listingKey derives a stable cache key from the listing parameters. Go
// prints maps with sorted keys, so equal parameter sets share a key.
func listingKey(p query.Params) string {
	return fmt.Sprintf("lobbies:%v:%s:%s:%d:%d", p.Filters, p.SortBy, p.SortOrder, p.Limit, p.Offset)
}
