package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"game-catalog-sync/models"
)

func newTestRemote(t *testing.T, handler http.HandlerFunc) *RemoteClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRemoteClient(srv.URL+"/api/", NewSession("tok-123", "u1"), 5*time.Second)
}

func TestRemoteClientSendsAuthAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotPath string
	client := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"want_to_play":[{"id":1}],"playing":[],"played":[]}`)
	})

	raw, err := client.FetchUserCollection(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if len(gotRequestID) != 36 {
		t.Fatalf("X-Request-ID = %q, want a uuid", gotRequestID)
	}
	if gotPath != "/api/collection" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(raw["want_to_play"]) != 1 {
		t.Fatalf("raw = %v", raw)
	}
}

func TestRemoteClientOmitsAuthWithoutSession(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewRemoteClient(srv.URL, NewSession("", ""), time.Second)
	if err := client.RemoveGameFromCollection(context.Background(), 7); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want none", gotAuth)
	}
}

func TestRemoteClientMutationBodies(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call
	client := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, body})
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	if err := client.AddGameToCollection(ctx, 7, models.StatusWantToPlay); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := client.UpdateGameStatus(ctx, 7, models.StatusPlayed); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := client.UpdateComment(ctx, "r1", "c1", "edited"); err != nil {
		t.Fatalf("update comment: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].method != http.MethodPost || calls[0].path != "/api/collection" ||
		calls[0].body["game_id"] != float64(7) || calls[0].body["status"] != "want_to_play" {
		t.Fatalf("add call = %+v", calls[0])
	}
	if calls[1].method != http.MethodPatch || calls[1].path != "/api/collection/7" || calls[1].body["status"] != "played" {
		t.Fatalf("update call = %+v", calls[1])
	}
	if calls[2].method != http.MethodPut || calls[2].path != "/api/reviews/r1/comments/c1" || calls[2].body["content"] != "edited" {
		t.Fatalf("update comment call = %+v", calls[2])
	}
}

func TestRemoteClientErrorEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", http.StatusConflict, `{"error":"Game already in collection"}`, "Game already in collection"},
		{"message field", http.StatusBadRequest, `{"message":"bad status"}`, "bad status"},
		{"plain text", http.StatusInternalServerError, "upstream exploded\n", "upstream exploded"},
		{"empty body", http.StatusServiceUnavailable, "", "addGameToCollection failed: 503 Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := client.AddGameToCollection(context.Background(), 7, models.StatusPlaying)
			var re *RemoteError
			if !errors.As(err, &re) {
				t.Fatalf("err = %v, want *RemoteError", err)
			}
			if re.Status != tt.status || re.Op != "addGameToCollection" {
				t.Fatalf("remote error = %+v", re)
			}
			if ErrorMessage(err) != tt.want {
				t.Fatalf("message = %q, want %q", ErrorMessage(err), tt.want)
			}
		})
	}
}

func TestRemoteClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewRemoteClient(url, nil, time.Second)
	_, err := client.GetGameReviews(context.Background(), 1)

	var re *RemoteError
	if !errors.As(err, &re) || re.Status != 0 {
		t.Fatalf("err = %v, want a RemoteError without status", err)
	}
	if !strings.Contains(re.Message, "getGameReviews request failed") {
		t.Fatalf("message = %q", re.Message)
	}
}

func TestRemoteClientUserReview(t *testing.T) {
	client := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/games/1/user-review":
			_, _ = io.WriteString(w, `{"has_reviewed":false,"review":null}`)
		case "/api/games/2/user-review":
			_, _ = io.WriteString(w, `{"has_reviewed":true,"review":{"id":"r9","game_id":2,"rating":4,"likes_count":2,"viewer_liked":true}}`)
		default:
			http.NotFound(w, r)
		}
	})

	none, err := client.GetUserReviewForGame(context.Background(), 1)
	if err != nil || none != nil {
		t.Fatalf("game 1: review %+v err %v, want nil/nil", none, err)
	}

	r, err := client.GetUserReviewForGame(context.Background(), 2)
	if err != nil {
		t.Fatalf("game 2: %v", err)
	}
	if r == nil || r.ID != "r9" || !r.ViewerLiked || r.LikesCount != 2 || r.CommentsLoaded() {
		t.Fatalf("game 2 review = %+v", r)
	}
}

func TestRemoteClientEmptyListsAreNonNil(t *testing.T) {
	client := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})

	reviews, err := client.GetGameReviews(context.Background(), 1)
	if err != nil || reviews == nil {
		t.Fatalf("reviews = %v, err %v", reviews, err)
	}
	comments, err := client.GetReviewComments(context.Background(), "r1")
	if err != nil || comments == nil {
		t.Fatalf("comments = %v, err %v", comments, err)
	}
}
