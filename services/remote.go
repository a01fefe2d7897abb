// services/remote.go
package services

import (
	"context"
	"encoding/json"

	"game-catalog-sync/models"
)

// RawCollection is the remote collection payload: status literal → pre-normalization game records.
type RawCollection map[string][]json.RawMessage

// CollectionRemote is the authoritative store behind the collection cache.
type CollectionRemote interface {
	FetchUserCollection(ctx context.Context) (RawCollection, error)
	AddGameToCollection(ctx context.Context, gameID int64, status models.Status) error
	UpdateGameStatus(ctx context.Context, gameID int64, status models.Status) error
	RemoveGameFromCollection(ctx context.Context, gameID int64) error
}

// ReviewRemote is the authoritative store behind the review/comment cache.
type ReviewRemote interface {
	GetGameReviews(ctx context.Context, gameID int64) ([]models.Review, error)
	// GetUserReviewForGame returns nil when the current user has not reviewed the game.
	GetUserReviewForGame(ctx context.Context, gameID int64) (*models.Review, error)
	CreateReview(ctx context.Context, gameID int64, rating int, content string) (models.Review, error)
	UpdateReview(ctx context.Context, reviewID string, rating int, content string) (models.Review, error)
	DeleteReview(ctx context.Context, reviewID string) error
	ToggleReviewLike(ctx context.Context, reviewID string) error

	GetReviewComments(ctx context.Context, reviewID string) ([]models.Comment, error)
	AddReviewComment(ctx context.Context, reviewID, content string) (models.Comment, error)
	UpdateComment(ctx context.Context, reviewID, commentID, content string) error
	DeleteComment(ctx context.Context, reviewID, commentID string) error
}

// CatalogRemote serves single game records.
type CatalogRemote interface {
	FetchGameDetails(ctx context.Context, id int64) (json.RawMessage, error)
}
