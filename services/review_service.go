// services/review_service.go
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"game-catalog-sync/models"
)

// ReviewState is an immutable snapshot of the review/comment cache.
type ReviewState struct {
	GameReviews map[int64][]models.Review `json:"game_reviews"`
	// UserReviews is the current user's review per game; a nil value means "none".
	UserReviews map[int64]*models.Review `json:"user_reviews"`
	Loading     bool                     `json:"loading"`
	Error       string                   `json:"error,omitempty"`
	Version     uint64                   `json:"version"`
}

// ReviewService caches reviews per game, the current user's review per game and
// the comment threads hanging off them.
//
// Unlike the collection cache, every mutation records the error in the shared
// Error field and also returns it so callers can show feedback next to the action.
type ReviewService struct {
	remote ReviewRemote
	now    func() time.Time

	mu          sync.Mutex
	gameReviews map[int64][]models.Review
	userReviews map[int64]*models.Review
	loading     bool
	err         string
	version     uint64

	subs broadcaster[ReviewState]
}

type ReviewOption func(*ReviewService)

// WithClock overrides the clock used to stamp comment edits.
func WithClock(now func() time.Time) ReviewOption {
	return func(s *ReviewService) { s.now = now }
}

func NewReviewService(remote ReviewRemote, opts ...ReviewOption) *ReviewService {
	s := &ReviewService{
		remote:      remote,
		now:         time.Now,
		gameReviews: make(map[int64][]models.Review),
		userReviews: make(map[int64]*models.Review),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReviewService) Snapshot() ReviewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ReviewService) Subscribe(fn func(ReviewState)) func() {
	return s.subs.subscribe(fn)
}

// GameReviews returns a copy of the cached list for a game.
func (s *ReviewService) GameReviews(gameID int64) []models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneReviews(s.gameReviews[gameID])
}

// UserReview returns the current user's cached review for a game, nil when there is none.
func (s *ReviewService) UserReview(gameID int64) *models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneReviewPtr(s.userReviews[gameID])
}

// FetchGameReviews replaces the cached list for a game.
func (s *ReviewService) FetchGameReviews(ctx context.Context, gameID int64) {
	s.update(func() {
		s.loading = true
		s.err = ""
	})

	reviews, err := s.remote.GetGameReviews(ctx, gameID)
	if err != nil {
		log.Printf("[REVIEWS] ❌ getGameReviews(game=%d) failed: %v", gameID, err)
		s.update(func() {
			s.loading = false
			s.err = ErrorMessage(err)
		})
		return
	}

	s.update(func() {
		s.gameReviews[gameID] = cloneReviews(reviews)
		s.loading = false
	})
}

// FetchUserReviewForGame replaces the current user's entry for a game. No loading flag.
func (s *ReviewService) FetchUserReviewForGame(ctx context.Context, gameID int64) {
	s.update(func() { s.err = "" })

	review, err := s.remote.GetUserReviewForGame(ctx, gameID)
	if err != nil {
		log.Printf("[REVIEWS] ❌ getUserReviewForGame(game=%d) failed: %v", gameID, err)
		s.update(func() { s.err = ErrorMessage(err) })
		return
	}
	s.update(func() {
		s.userReviews[gameID] = cloneReviewPtr(review)
	})
}

// AddReview submits a review and puts it at the head of the game's list and in
// the current user's slot.
func (s *ReviewService) AddReview(ctx context.Context, gameID int64, rating int, content string) (models.Review, error) {
	s.update(func() {
		s.loading = true
		s.err = ""
	})

	review, err := s.remote.CreateReview(ctx, gameID, rating, content)
	if err != nil {
		log.Printf("[REVIEWS] ❌ createReview(game=%d) failed: %v", gameID, err)
		s.fail(err, true)
		return models.Review{}, err
	}

	s.update(func() {
		list := make([]models.Review, 0, len(s.gameReviews[gameID])+1)
		list = append(list, review.Clone())
		list = append(list, s.gameReviews[gameID]...)
		s.gameReviews[gameID] = list
		s.userReviews[gameID] = cloneReviewPtr(&review)
		s.loading = false
	})
	log.Printf("[REVIEWS] ✅ review %s added for game %d", review.ID, gameID)
	return review.Clone(), nil
}

// UpdateReview submits an edit, merges the result into the list entry and
// overwrites the current user's entry.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, gameID int64, rating int, content string) (models.Review, error) {
	s.update(func() { s.err = "" })

	updated, err := s.remote.UpdateReview(ctx, reviewID, rating, content)
	if err != nil {
		log.Printf("[REVIEWS] ❌ updateReview(review=%s) failed: %v", reviewID, err)
		s.fail(err, false)
		return models.Review{}, err
	}

	s.update(func() {
		list := s.gameReviews[gameID]
		for i := range list {
			if list[i].ID == reviewID {
				list[i] = mergeReview(list[i], updated)
			}
		}
		s.userReviews[gameID] = cloneReviewPtr(&updated)
	})
	return updated.Clone(), nil
}

// DeleteReview removes a review. gameID may be 0 when the caller only knows the
// review id; the game is then looked up in the current-user index, and when that
// misses too the review is dropped from every cached list.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string, gameID int64) error {
	s.update(func() { s.err = "" })

	if err := s.remote.DeleteReview(ctx, reviewID); err != nil {
		log.Printf("[REVIEWS] ❌ deleteReview(review=%s) failed: %v", reviewID, err)
		s.fail(err, false)
		return err
	}

	s.update(func() {
		resolved := gameID
		if resolved == 0 {
			id, ok := s.userReviewGameLocked(reviewID)
			if !ok {
				log.Printf("[REVIEWS] ⚠️ review %s has no owning game in the user index, dropping it from every list", reviewID)
				for g, list := range s.gameReviews {
					s.gameReviews[g] = withoutReview(list, reviewID)
				}
				return
			}
			resolved = id
		}
		if list, ok := s.gameReviews[resolved]; ok {
			s.gameReviews[resolved] = withoutReview(list, reviewID)
		}
		s.userReviews[resolved] = nil
	})
	return nil
}

// ToggleLike flips the viewer's like. The new flag and count are derived from
// the local state, not from the remote response. A zero gameID is resolved from the cache.
func (s *ReviewService) ToggleLike(ctx context.Context, reviewID string, gameID int64) error {
	s.update(func() { s.err = "" })

	if err := s.remote.ToggleReviewLike(ctx, reviewID); err != nil {
		log.Printf("[REVIEWS] ❌ toggleReviewLike(review=%s) failed: %v", reviewID, err)
		s.fail(err, false)
		return err
	}

	s.update(func() {
		gameID := s.resolveGameLocked(gameID, reviewID)
		current, ok := s.findLocked(gameID, reviewID)
		if !ok {
			return
		}
		liked := !current.ViewerLiked
		delta := 1
		if current.ViewerLiked {
			delta = -1
		}
		s.patchLocked(gameID, reviewID, func(r *models.Review) {
			r.ViewerLiked = liked
			r.LikesCount += delta
		})
	})
	return nil
}

// FetchReviewComments materializes the thread on the review in both cache locations.
func (s *ReviewService) FetchReviewComments(ctx context.Context, reviewID string, gameID int64) ([]models.Comment, error) {
	s.update(func() { s.err = "" })

	comments, err := s.remote.GetReviewComments(ctx, reviewID)
	if err != nil {
		log.Printf("[REVIEWS] ❌ getReviewComments(review=%s) failed: %v", reviewID, err)
		s.fail(err, false)
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	s.update(func() {
		s.patchLocked(gameID, reviewID, func(r *models.Review) {
			r.Comments = append([]models.Comment{}, comments...)
			r.CommentsCount = len(r.Comments)
		})
	})
	return append([]models.Comment{}, comments...), nil
}

func (s *ReviewService) AddComment(ctx context.Context, reviewID string, gameID int64, content string) (models.Comment, error) {
	s.update(func() { s.err = "" })

	comment, err := s.remote.AddReviewComment(ctx, reviewID, content)
	if err != nil {
		log.Printf("[REVIEWS] ❌ addReviewComment(review=%s) failed: %v", reviewID, err)
		s.fail(err, false)
		return models.Comment{}, err
	}

	s.update(func() {
		s.patchLocked(gameID, reviewID, func(r *models.Review) {
			if !r.CommentsLoaded() {
				r.CommentsCount++
				return
			}
			r.Comments = append(r.Comments, comment)
			r.CommentsCount = len(r.Comments)
		})
	})
	return comment, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, reviewID string, gameID int64, commentID string) error {
	s.update(func() { s.err = "" })

	if err := s.remote.DeleteComment(ctx, reviewID, commentID); err != nil {
		log.Printf("[REVIEWS] ❌ deleteComment(review=%s, comment=%s) failed: %v", reviewID, commentID, err)
		s.fail(err, false)
		return err
	}

	s.update(func() {
		s.patchLocked(gameID, reviewID, func(r *models.Review) {
			if !r.CommentsLoaded() {
				r.CommentsCount = max(r.CommentsCount-1, 0)
				return
			}
			kept := make([]models.Comment, 0, len(r.Comments))
			for _, c := range r.Comments {
				if c.ID != commentID {
					kept = append(kept, c)
				}
			}
			r.Comments = kept
			r.CommentsCount = len(kept)
		})
	})
	return nil
}

// UpdateComment rewrites a comment's content and stamps a fresh update time.
func (s *ReviewService) UpdateComment(ctx context.Context, reviewID string, gameID int64, commentID, content string) error {
	s.update(func() { s.err = "" })

	if err := s.remote.UpdateComment(ctx, reviewID, commentID, content); err != nil {
		log.Printf("[REVIEWS] ❌ updateComment(review=%s, comment=%s) failed: %v", reviewID, commentID, err)
		s.fail(err, false)
		return err
	}

	stamp := s.now().UTC()
	s.update(func() {
		s.patchLocked(gameID, reviewID, func(r *models.Review) {
			for i := range r.Comments {
				if r.Comments[i].ID == commentID {
					r.Comments[i].Content = content
					r.Comments[i].UpdatedAt = stamp
				}
			}
		})
	})
	return nil
}

// ClearGameReviews drops everything cached for one game. Local only.
func (s *ReviewService) ClearGameReviews(gameID int64) {
	s.update(func() {
		delete(s.gameReviews, gameID)
		delete(s.userReviews, gameID)
	})
}

// ClearAllReviews resets the cache. Local only.
func (s *ReviewService) ClearAllReviews() {
	s.update(func() {
		s.gameReviews = make(map[int64][]models.Review)
		s.userReviews = make(map[int64]*models.Review)
		s.loading = false
		s.err = ""
	})
}

func (s *ReviewService) fail(err error, clearLoading bool) {
	s.update(func() {
		s.err = ErrorMessage(err)
		if clearLoading {
			s.loading = false
		}
	})
}

// userReviewGameLocked finds the game whose current-user entry is reviewID.
func (s *ReviewService) userReviewGameLocked(reviewID string) (int64, bool) {
	for gameID, r := range s.userReviews {
		if r != nil && r.ID == reviewID {
			return gameID, true
		}
	}
	return 0, false
}

// resolveGameLocked fills in a missing gameID from the current-user index, then
// from the cached lists. It returns 0 when the review is not cached anywhere.
func (s *ReviewService) resolveGameLocked(gameID int64, reviewID string) int64 {
	if gameID != 0 {
		return gameID
	}
	if id, ok := s.userReviewGameLocked(reviewID); ok {
		return id
	}
	for id, list := range s.gameReviews {
		for _, r := range list {
			if r.ID == reviewID {
				return id
			}
		}
	}
	return 0
}

// findLocked prefers the per-game list entry and falls back to the current-user entry.
func (s *ReviewService) findLocked(gameID int64, reviewID string) (models.Review, bool) {
	for _, r := range s.gameReviews[gameID] {
		if r.ID == reviewID {
			return r, true
		}
	}
	if r := s.userReviews[gameID]; r != nil && r.ID == reviewID {
		return *r, true
	}
	return models.Review{}, false
}

// patchLocked applies fn to every cached copy of the review: the list entry and,
// when it is the same review, the current-user entry.
func (s *ReviewService) patchLocked(gameID int64, reviewID string, fn func(*models.Review)) {
	gameID = s.resolveGameLocked(gameID, reviewID)
	if list, ok := s.gameReviews[gameID]; ok {
		next := cloneReviews(list)
		for i := range next {
			if next[i].ID == reviewID {
				fn(&next[i])
			}
		}
		s.gameReviews[gameID] = next
	}
	if r := s.userReviews[gameID]; r != nil && r.ID == reviewID {
		c := r.Clone()
		fn(&c)
		s.userReviews[gameID] = &c
	}
}

func (s *ReviewService) update(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subs.publish(snap)
}

func (s *ReviewService) snapshotLocked() ReviewState {
	games := make(map[int64][]models.Review, len(s.gameReviews))
	for id, list := range s.gameReviews {
		games[id] = cloneReviews(list)
	}
	users := make(map[int64]*models.Review, len(s.userReviews))
	for id, r := range s.userReviews {
		users[id] = cloneReviewPtr(r)
	}
	return ReviewState{
		GameReviews: games,
		UserReviews: users,
		Loading:     s.loading,
		Error:       s.err,
		Version:     s.version,
	}
}

// mergeReview takes the server's fields but keeps a thread that was already materialized.
func mergeReview(old, updated models.Review) models.Review {
	merged := updated.Clone()
	if !merged.CommentsLoaded() && old.CommentsLoaded() {
		merged.Comments = old.Clone().Comments
		merged.CommentsCount = len(merged.Comments)
	}
	return merged
}

func withoutReview(list []models.Review, reviewID string) []models.Review {
	out := make([]models.Review, 0, len(list))
	for _, r := range list {
		if r.ID != reviewID {
			out = append(out, r)
		}
	}
	return out
}

func cloneReviews(list []models.Review) []models.Review {
	if list == nil {
		return nil
	}
	out := make([]models.Review, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out
}

func cloneReviewPtr(r *models.Review) *models.Review {
	if r == nil {
		return nil
	}
	c := r.Clone()
	return &c
}
