// services/remote_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"game-catalog-sync/models"
	"game-catalog-sync/utils"

	"github.com/google/uuid"
)

// RemoteClient talks to the authoritative catalog API over HTTP/JSON.
// It implements CollectionRemote, ReviewRemote and CatalogRemote.
type RemoteClient struct {
	BaseURL    string
	Session    *Session
	HTTPClient *http.Client
}

func NewRemoteClient(baseURL string, session *Session, timeout time.Duration) *RemoteClient {
	return &RemoteClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Session:    session,
		HTTPClient: utils.NewHTTPClient(timeout),
	}
}

var (
	_ CollectionRemote = (*RemoteClient)(nil)
	_ ReviewRemote     = (*RemoteClient)(nil)
	_ CatalogRemote    = (*RemoteClient)(nil)
)

// ===== Collection =====

func (c *RemoteClient) FetchUserCollection(ctx context.Context) (RawCollection, error) {
	var out RawCollection
	if err := c.do(ctx, "fetchUserCollection", http.MethodGet, c.path("collection"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RemoteClient) AddGameToCollection(ctx context.Context, gameID int64, status models.Status) error {
	body := map[string]any{"game_id": gameID, "status": status}
	return c.do(ctx, "addGameToCollection", http.MethodPost, c.path("collection"), body, nil)
}

func (c *RemoteClient) UpdateGameStatus(ctx context.Context, gameID int64, status models.Status) error {
	body := map[string]any{"status": status}
	return c.do(ctx, "updateGameStatus", http.MethodPatch, c.path("collection", idSegment(gameID)), body, nil)
}

func (c *RemoteClient) RemoveGameFromCollection(ctx context.Context, gameID int64) error {
	return c.do(ctx, "removeGameFromCollection", http.MethodDelete, c.path("collection", idSegment(gameID)), nil, nil)
}

// ===== Catalog =====

func (c *RemoteClient) FetchGameDetails(ctx context.Context, gameID int64) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, "fetchGameDetails", http.MethodGet, c.path("games", idSegment(gameID)), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ===== Reviews =====

func (c *RemoteClient) GetGameReviews(ctx context.Context, gameID int64) ([]models.Review, error) {
	var out []models.Review
	if err := c.do(ctx, "getGameReviews", http.MethodGet, c.path("games", idSegment(gameID), "reviews"), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Review{}
	}
	return out, nil
}

func (c *RemoteClient) GetUserReviewForGame(ctx context.Context, gameID int64) (*models.Review, error) {
	var out struct {
		HasReviewed bool           `json:"has_reviewed"`
		Review      *models.Review `json:"review"`
	}
	if err := c.do(ctx, "getUserReviewForGame", http.MethodGet, c.path("games", idSegment(gameID), "user-review"), nil, &out); err != nil {
		return nil, err
	}
	if !out.HasReviewed {
		return nil, nil
	}
	return out.Review, nil
}

func (c *RemoteClient) CreateReview(ctx context.Context, gameID int64, rating int, content string) (models.Review, error) {
	var out models.Review
	body := map[string]any{"rating": rating, "content": content}
	err := c.do(ctx, "createReview", http.MethodPost, c.path("games", idSegment(gameID), "reviews"), body, &out)
	return out, err
}

func (c *RemoteClient) UpdateReview(ctx context.Context, reviewID string, rating int, content string) (models.Review, error) {
	var out models.Review
	body := map[string]any{"rating": rating, "content": content}
	err := c.do(ctx, "updateReview", http.MethodPut, c.path("reviews", reviewID), body, &out)
	return out, err
}

func (c *RemoteClient) DeleteReview(ctx context.Context, reviewID string) error {
	return c.do(ctx, "deleteReview", http.MethodDelete, c.path("reviews", reviewID), nil, nil)
}

func (c *RemoteClient) ToggleReviewLike(ctx context.Context, reviewID string) error {
	return c.do(ctx, "toggleReviewLike", http.MethodPost, c.path("reviews", reviewID, "like"), nil, nil)
}

// ===== Comments =====

func (c *RemoteClient) GetReviewComments(ctx context.Context, reviewID string) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.do(ctx, "getReviewComments", http.MethodGet, c.path("reviews", reviewID, "comments"), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Comment{}
	}
	return out, nil
}

func (c *RemoteClient) AddReviewComment(ctx context.Context, reviewID, content string) (models.Comment, error) {
	var out models.Comment
	body := map[string]any{"content": content}
	err := c.do(ctx, "addReviewComment", http.MethodPost, c.path("reviews", reviewID, "comments"), body, &out)
	return out, err
}

func (c *RemoteClient) UpdateComment(ctx context.Context, reviewID, commentID, content string) error {
	body := map[string]any{"content": content}
	return c.do(ctx, "updateComment", http.MethodPut, c.path("reviews", reviewID, "comments", commentID), body, nil)
}

func (c *RemoteClient) DeleteComment(ctx context.Context, reviewID, commentID string) error {
	return c.do(ctx, "deleteComment", http.MethodDelete, c.path("reviews", reviewID, "comments", commentID), nil, nil)
}

// ===== Transport =====

func idSegment(v int64) string { return strconv.FormatInt(v, 10) }

// path joins segments onto the base URL; an unparsable base is reported by do.
func (c *RemoteClient) path(elem ...string) string {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return base.JoinPath(elem...).String()
}

// do performs one remote operation. Non-2xx answers become a RemoteError whose
// Message is the server's {"error": "..."} text when present.
func (c *RemoteClient) do(ctx context.Context, op, method, target string, body, out any) error {
	if target == "" {
		return NewRemoteError(op, 0, "", fmt.Errorf("invalid remote base URL %q", c.BaseURL))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return NewRemoteError(op, 0, "", fmt.Errorf("failed to encode %s request: %w", op, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return NewRemoteError(op, 0, "", fmt.Errorf("failed to create %s request: %w", op, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.Session != nil {
		if token := c.Session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("[REMOTE] ❌ %s %s failed: %v", method, target, err)
		return NewRemoteError(op, 0, "", fmt.Errorf("%s request failed: %w", op, err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := errorMessageFromBody(raw)
		if msg == "" {
			msg = fmt.Sprintf("%s failed: %d %s", op, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		log.Printf("[REMOTE] ❌ %s %s returned %d: %s", method, target, resp.StatusCode, msg)
		return NewRemoteError(op, resp.StatusCode, msg, nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewRemoteError(op, resp.StatusCode, "", fmt.Errorf("failed to decode %s response: %w", op, err))
	}
	return nil
}

func errorMessageFromBody(raw []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
