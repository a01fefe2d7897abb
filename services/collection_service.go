// services/collection_service.go
package services

import (
	"context"
	"log"
	"slices"
	"sync"

	"game-catalog-sync/models"
)

// CollectionState is an immutable snapshot of the collection cache.
type CollectionState struct {
	Collection   models.Collection `json:"collection"`
	Loading      bool              `json:"loading"`
	LoadingGames []int64           `json:"loading_games"`
	Error        string            `json:"error,omitempty"`
	// Version increases with every transition; observers can drop snapshots older than one already seen.
	Version uint64 `json:"version"`
}

// collectionPatch computes the next collection from the current one.
type collectionPatch func(models.Collection) models.Collection

// CollectionService caches the user's games bucketed by status.
//
// Mutations never return remote errors; they land in the shared Error field.
// In-flight marks only drive UI affordances: two overlapping mutations on the
// same game race, and whichever completes last decides the visible state.
type CollectionService struct {
	remote CollectionRemote

	mu         sync.Mutex
	collection models.Collection
	loading    bool
	inFlight   map[int64]struct{}
	err        string
	version    uint64

	subs broadcaster[CollectionState]
}

func NewCollectionService(remote CollectionRemote) *CollectionService {
	return &CollectionService{
		remote:     remote,
		collection: models.NewCollection(),
		inFlight:   make(map[int64]struct{}),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *CollectionService) Snapshot() CollectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every state transition. The returned func unsubscribes.
func (s *CollectionService) Subscribe(fn func(CollectionState)) func() {
	return s.subs.subscribe(fn)
}

// FetchCollection replaces the whole collection with the remote snapshot.
// On failure the previous data stays visible and the error is recorded.
func (s *CollectionService) FetchCollection(ctx context.Context) {
	s.update(func() {
		s.loading = true
		s.err = ""
	})

	raw, err := s.remote.FetchUserCollection(ctx)
	if err != nil {
		log.Printf("[COLLECTION] ❌ fetchUserCollection failed: %v", err)
		s.update(func() {
			s.loading = false
			s.err = ErrorMessage(err)
		})
		return
	}

	s.reconcile(buildCollection(raw))
}

// AddGame adds a game remotely and then refetches the whole collection, since the
// server may enrich the entry with fields only it knows.
func (s *CollectionService) AddGame(ctx context.Context, gameID int64, status models.Status) {
	s.update(func() {
		s.inFlight[gameID] = struct{}{}
		s.err = ""
	})
	defer s.update(func() { delete(s.inFlight, gameID) })

	if err := s.remote.AddGameToCollection(ctx, gameID, status); err != nil {
		log.Printf("[COLLECTION] ❌ addGameToCollection(game=%d, status=%s) failed: %v", gameID, status, err)
		s.update(func() { s.err = ErrorMessage(err) })
		return
	}
	s.FetchCollection(ctx)
}

// UpdateStatus moves the game to another bucket right away and trusts the move once
// the remote confirms it. A remote failure forces a full reconciliation.
func (s *CollectionService) UpdateStatus(ctx context.Context, gameID int64, status models.Status) {
	s.update(func() {
		s.inFlight[gameID] = struct{}{}
		s.err = ""
	})
	defer s.update(func() { delete(s.inFlight, gameID) })

	s.applyOptimistic(moveTo(gameID, status))

	if err := s.remote.UpdateGameStatus(ctx, gameID, status); err != nil {
		log.Printf("[COLLECTION] ❌ updateGameStatus(game=%d, status=%s) failed, reconciling: %v", gameID, status, err)
		s.FetchCollection(ctx)
		s.update(func() { s.err = ErrorMessage(err) })
	}
}

// RemoveGame drops the game from every bucket right away; a remote failure forces
// a full reconciliation.
func (s *CollectionService) RemoveGame(ctx context.Context, gameID int64) {
	s.update(func() {
		s.inFlight[gameID] = struct{}{}
		s.err = ""
	})
	defer s.update(func() { delete(s.inFlight, gameID) })

	s.applyOptimistic(removeEverywhere(gameID))

	if err := s.remote.RemoveGameFromCollection(ctx, gameID); err != nil {
		log.Printf("[COLLECTION] ❌ removeGameFromCollection(game=%d) failed, reconciling: %v", gameID, err)
		s.FetchCollection(ctx)
		s.update(func() { s.err = ErrorMessage(err) })
	}
}

// GetGameStatus returns the bucket holding gameID; false means not in the collection.
func (s *CollectionService) GetGameStatus(gameID int64) (models.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.collection.Find(gameID)
	if !ok {
		return "", false
	}
	return e.Status, true
}

func (s *CollectionService) IsGameLoading(gameID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[gameID]
	return ok
}

// Query runs the filter/sort engine over one bucket, or over every bucket when status is empty.
func (s *CollectionService) Query(status models.Status, spec models.FilterSpec, sortBy models.SortKey) []models.CollectionEntry {
	s.mu.Lock()
	var entries []models.CollectionEntry
	if status == "" {
		entries = s.collection.All()
	} else {
		entries = slices.Clone(s.collection.Bucket(status))
	}
	s.mu.Unlock()

	statusByID := make(map[int64]models.Status, len(entries))
	games := make([]models.GameSummary, 0, len(entries))
	for _, e := range entries {
		statusByID[e.ID] = e.Status
		games = append(games, e.GameSummary.Clone())
	}

	games = SortGames(FilterGames(games, spec), sortBy)

	out := make([]models.CollectionEntry, len(games))
	for i, g := range games {
		out[i] = models.CollectionEntry{GameSummary: g, Status: statusByID[g.ID]}
	}
	return out
}

// applyOptimistic patches local state ahead of remote confirmation.
func (s *CollectionService) applyOptimistic(patch collectionPatch) {
	s.update(func() {
		s.collection = patch(s.collection)
	})
}

// reconcile replaces local state with an authoritative snapshot. Applying the same
// snapshot twice leaves the same state.
func (s *CollectionService) reconcile(snapshot models.Collection) {
	s.update(func() {
		s.collection = snapshot.Clone()
		s.loading = false
	})
}

// update runs fn under the lock and publishes the resulting snapshot.
func (s *CollectionService) update(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subs.publish(snap)
}

func (s *CollectionService) snapshotLocked() CollectionState {
	ids := make([]int64, 0, len(s.inFlight))
	for id := range s.inFlight {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return CollectionState{
		Collection:   s.collection.Clone(),
		Loading:      s.loading,
		LoadingGames: ids,
		Error:        s.err,
		Version:      s.version,
	}
}

// moveTo takes the entry out of its bucket and appends it to the target one with
// the new status. Everything else on the entry is kept.
func moveTo(gameID int64, status models.Status) collectionPatch {
	return func(c models.Collection) models.Collection {
		entry, ok := c.Find(gameID)
		if !ok {
			return c
		}
		next := removeEverywhere(gameID)(c)
		entry.Status = status
		next.SetBucket(status, append(slices.Clone(next.Bucket(status)), entry))
		return next
	}
}

func removeEverywhere(gameID int64) collectionPatch {
	return func(c models.Collection) models.Collection {
		next := models.Collection{}
		for _, st := range models.Statuses {
			kept := make([]models.CollectionEntry, 0, len(c.Bucket(st)))
			for _, e := range c.Bucket(st) {
				if e.ID != gameID {
					kept = append(kept, e)
				}
			}
			next.SetBucket(st, kept)
		}
		return next
	}
}

// buildCollection normalizes the remote payload into buckets. A game listed under
// more than one status keeps only its first bucket in scan order.
func buildCollection(raw RawCollection) models.Collection {
	c := models.NewCollection()
	seen := make(map[int64]bool)
	for _, st := range models.Statuses {
		games, errs := NormalizeGames(raw[string(st)])
		for _, err := range errs {
			log.Printf("[COLLECTION] ⚠️ skipping %s record: %v", st, err)
		}
		entries := make([]models.CollectionEntry, 0, len(games))
		for _, g := range games {
			if seen[g.ID] {
				log.Printf("[COLLECTION] ⚠️ game %d listed in more than one bucket, keeping the first", g.ID)
				continue
			}
			seen[g.ID] = true
			entries = append(entries, models.CollectionEntry{GameSummary: g, Status: st})
		}
		c.SetBucket(st, entries)
	}
	return c
}
