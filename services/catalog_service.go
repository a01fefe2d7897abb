// services/catalog_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"game-catalog-sync/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultDetailsCacheSize = 500
	DefaultDetailsCacheTTL  = 10 * time.Minute
)

type cachedGame struct {
	game      models.GameSummary
	expiresAt time.Time
}

// CatalogService serves normalized game details, keeping recent ones in a bounded LRU.
type CatalogService struct {
	remote CatalogRemote
	ttl    time.Duration
	now    func() time.Time
	cache  *lru.Cache[int64, cachedGame]
}

func NewCatalogService(remote CatalogRemote, size int, ttl time.Duration) (*CatalogService, error) {
	if size <= 0 {
		size = DefaultDetailsCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultDetailsCacheTTL
	}
	c, err := lru.New[int64, cachedGame](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create details cache: %w", err)
	}
	return &CatalogService{remote: remote, ttl: ttl, now: time.Now, cache: c}, nil
}

// GetGameDetails returns the canonical game, from cache when fresh.
func (s *CatalogService) GetGameDetails(ctx context.Context, gameID int64) (models.GameSummary, error) {
	if item, ok := s.cache.Get(gameID); ok {
		if s.now().Before(item.expiresAt) {
			return item.game.Clone(), nil
		}
		s.cache.Remove(gameID)
	}

	raw, err := s.remote.FetchGameDetails(ctx, gameID)
	if err != nil {
		log.Printf("[CATALOG] ❌ fetchGameDetails(game=%d) failed: %v", gameID, err)
		return models.GameSummary{}, err
	}
	game, err := NormalizeGame(raw)
	if err != nil {
		return models.GameSummary{}, fmt.Errorf("game %d: %w", gameID, err)
	}

	s.cache.Add(gameID, cachedGame{game: game, expiresAt: s.now().Add(s.ttl)})
	return game.Clone(), nil
}

func (s *CatalogService) Invalidate(gameID int64) {
	s.cache.Remove(gameID)
}

// Cached reports whether gameID has an entry, fresh or not.
func (s *CatalogService) Cached(gameID int64) bool {
	return s.cache.Contains(gameID)
}

func (s *CatalogService) Purge() {
	s.cache.Purge()
}
