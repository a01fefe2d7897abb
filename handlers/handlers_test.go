package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"game-catalog-sync/models"
	"game-catalog-sync/services"

	"github.com/gofiber/fiber/v2"
)

// upstream is a minimal stand-in for the remote catalog API.
type upstream struct {
	mu         sync.Mutex
	collection map[string][]map[string]any
	failStatus bool
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/collection":
		_ = json.NewEncoder(w).Encode(u.collection)
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/collection/"):
		if u.failStatus {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"status update rejected"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/games/5":
		_, _ = io.WriteString(w, `{"id":5,"name":"Hollow Knight","aggregated_rating":87}`)
	case r.Method == http.MethodGet && r.URL.Path == "/games/5/reviews":
		_, _ = io.WriteString(w, `[{"id":"r1","game_id":5,"rating":5,"likes_count":1}]`)
	case r.Method == http.MethodPost && r.URL.Path == "/games/5/reviews":
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"r2","game_id":5,"rating":4,"content":"nice"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/reviews/r1/like":
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/reviews/r1/comments":
		_, _ = io.WriteString(w, `[{"id":"c1","review_id":"r1","content":"first"}]`)
	case r.Method == http.MethodPost && r.URL.Path == "/reviews/r1/comments":
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"c2","review_id":"r1","content":"second"}`)
	case strings.HasPrefix(r.URL.Path, "/reviews/r1/comments/"):
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodDelete && r.URL.Path == "/reviews/missing":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Review not found"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not found"}`)
	}
}

type testEnv struct {
	app        *fiber.App
	upstream   *upstream
	session    *services.Session
	collection *services.CollectionService
	reviews    *services.ReviewService
	catalog    *services.CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	up := &upstream{collection: map[string][]map[string]any{
		"want_to_play": {
			{"id": 1, "name": "Zelda", "genres": []string{"Adventure"}, "platforms": []string{"Nintendo Switch"}, "aggregated_rating": 96},
			{"id": 2, "name": "Astro Bot", "genres": []string{"Platform"}, "platforms": []string{"PlayStation 5"}, "aggregated_rating": 94},
		},
		"playing": {},
		"played": {
			{"id": 3, "name": "Bayonetta", "platforms": []string{"Nintendo Switch"}},
		},
	}}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	session := services.NewSession("tok", "u1")
	remote := services.NewRemoteClient(srv.URL, session, 5*time.Second)
	collection := services.NewCollectionService(remote)
	reviews := services.NewReviewService(remote)
	catalog, err := services.NewCatalogService(remote, 10, time.Minute)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	app := fiber.New()
	SetupCollectionRoutes(app, collection, session)
	SetupReviewRoutes(app, reviews, session)
	SetupGameRoutes(app, catalog)
	SetupSessionRoutes(app, session, reviews)

	return &testEnv{app: app, upstream: up, session: session, collection: collection, reviews: reviews, catalog: catalog}
}

func (e *testEnv) do(t *testing.T, method, target, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, target, raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestCollectionRefreshAndQuery(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/collection/refresh", "")
	if status != http.StatusOK {
		t.Fatalf("refresh status = %d", status)
	}
	coll := body["collection"].(map[string]any)
	if len(coll["want_to_play"].([]any)) != 2 {
		t.Fatalf("collection = %v", coll)
	}

	status, body = env.do(t, http.MethodGet, "/collection/games?platforms=switch&sort=-name", "")
	if status != http.StatusOK {
		t.Fatalf("query status = %d", status)
	}
	games := body["games"].([]any)
	if body["count"] != float64(2) || games[0].(map[string]any)["name"] != "Zelda" {
		t.Fatalf("games = %v", games)
	}
	if games[1].(map[string]any)["status"] != "played" || games[1].(map[string]any)["rating"] != "N/A" {
		t.Fatalf("second game = %v", games[1])
	}

	status, _ = env.do(t, http.MethodGet, "/collection/games?sort=popularity", "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad sort status = %d", status)
	}
	status, _ = env.do(t, http.MethodGet, "/collection/games?min_rating=abc", "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad min_rating status = %d", status)
	}
}

func TestCollectionUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/collection/refresh", "")

	status, body := env.do(t, http.MethodPatch, "/collection/1", `{"status":"playing"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if playing := body["collection"].(map[string]any)["playing"].([]any); len(playing) != 1 {
		t.Fatalf("playing = %v", playing)
	}

	_, body = env.do(t, http.MethodGet, "/collection/1/status", "")
	if body["status"] != "playing" || body["in_collection"] != true || body["loading"] != false {
		t.Fatalf("status body = %v", body)
	}

	env.upstream.mu.Lock()
	env.upstream.failStatus = true
	env.upstream.mu.Unlock()

	status, body = env.do(t, http.MethodPatch, "/collection/2", `{"status":"played"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, collection failures are reported in the snapshot", status)
	}
	if body["error"] != "status update rejected" {
		t.Fatalf("error = %v", body["error"])
	}
	if got, _ := env.collection.GetGameStatus(2); got != "want_to_play" {
		t.Fatalf("game 2 status = %q, want reconciled want_to_play", got)
	}

	status, _ = env.do(t, http.MethodPatch, "/collection/2", `{"status":"finished"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("unknown status should be rejected, got %d", status)
	}
}

func TestMutationsRequireIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.session.Clear()

	for _, tc := range []struct{ method, target, body string }{
		{http.MethodPost, "/collection", `{"game_id":1,"status":"playing"}`},
		{http.MethodDelete, "/collection/1", ""},
		{http.MethodPost, "/games/5/reviews", `{"rating":4}`},
		{http.MethodPost, "/reviews/r1/like?game_id=5", ""},
	} {
		if status, _ := env.do(t, tc.method, tc.target, tc.body); status != http.StatusUnauthorized {
			t.Fatalf("%s %s = %d, want 401", tc.method, tc.target, status)
		}
	}

	if status, _ := env.do(t, http.MethodGet, "/collection", ""); status != http.StatusOK {
		t.Fatalf("reads should stay open, got %d", status)
	}
}

func TestReviewRoutes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/games/5/reviews", "")
	if status != http.StatusOK || len(body["reviews"].([]any)) != 1 {
		t.Fatalf("reviews = %d %v", status, body)
	}

	status, body = env.do(t, http.MethodPost, "/reviews/r1/like?game_id=5", "")
	if status != http.StatusOK || body["viewer_liked"] != true || body["likes_count"] != float64(2) {
		t.Fatalf("like = %d %v", status, body)
	}

	status, _ = env.do(t, http.MethodPost, "/games/5/reviews", `{"rating":9,"content":"x"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("out of range rating = %d", status)
	}

	status, body = env.do(t, http.MethodPost, "/games/5/reviews", `{"rating":4,"content":"nice"}`)
	if status != http.StatusCreated || body["id"] != "r2" {
		t.Fatalf("create = %d %v", status, body)
	}
	if list := env.reviews.GameReviews(5); len(list) != 2 || list[0].ID != "r2" {
		t.Fatalf("cached list = %+v", list)
	}

	status, body = env.do(t, http.MethodDelete, "/reviews/missing?game_id=5", "")
	if status != http.StatusNotFound || body["error"] != "Review not found" {
		t.Fatalf("delete missing = %d %v", status, body)
	}
	if env.reviews.Snapshot().Error != "Review not found" {
		t.Fatal("review failures should also be recorded in the cache")
	}

	status, _ = env.do(t, http.MethodDelete, "/games/5/reviews/cache", "")
	if status != http.StatusNoContent || env.reviews.GameReviews(5) != nil {
		t.Fatalf("clear = %d", status)
	}
}

func TestGameDetails(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/games/5", "")
	if status != http.StatusOK || body["name"] != "Hollow Knight" || body["rating"] != "4.4" {
		t.Fatalf("details = %d %v", status, body)
	}

	status, body = env.do(t, http.MethodGet, "/games/77", "")
	if status != http.StatusNotFound || body["error"] != "not found" {
		t.Fatalf("missing game = %d %v", status, body)
	}

	status, _ = env.do(t, http.MethodGet, "/games/abc", "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad id = %d", status)
	}
}

func TestReviewRoutesWithoutGameID(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/games/5/reviews", "")

	cached := func() models.Review {
		t.Helper()
		for _, r := range env.reviews.GameReviews(5) {
			if r.ID == "r1" {
				return r
			}
		}
		t.Fatal("r1 not cached")
		return models.Review{}
	}

	status, body := env.do(t, http.MethodPost, "/reviews/r1/like", "")
	if status != http.StatusOK || body["viewer_liked"] != true {
		t.Fatalf("like = %d %v", status, body)
	}
	if r := cached(); !r.ViewerLiked || r.LikesCount != 2 {
		t.Fatalf("like not applied to cache: %+v", r)
	}

	status, body = env.do(t, http.MethodGet, "/reviews/r1/comments", "")
	if status != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("comments = %d %v", status, body)
	}
	if r := cached(); len(r.Comments) != 1 || r.CommentsCount != 1 {
		t.Fatalf("thread not materialized: %+v", r)
	}

	status, _ = env.do(t, http.MethodPost, "/reviews/r1/comments", `{"content":"second"}`)
	if status != http.StatusCreated {
		t.Fatalf("add comment = %d", status)
	}
	if r := cached(); len(r.Comments) != 2 || r.CommentsCount != 2 {
		t.Fatalf("comment not added to cache: %+v", r)
	}

	status, _ = env.do(t, http.MethodPut, "/reviews/r1/comments/c1", `{"content":"edited"}`)
	if status != http.StatusNoContent {
		t.Fatalf("update comment = %d", status)
	}
	if r := cached(); r.Comments[0].Content != "edited" {
		t.Fatalf("comment not updated in cache: %+v", r.Comments)
	}

	status, _ = env.do(t, http.MethodDelete, "/reviews/r1/comments/c2", "")
	if status != http.StatusNoContent {
		t.Fatalf("delete comment = %d", status)
	}
	if r := cached(); len(r.Comments) != 1 || r.CommentsCount != 1 {
		t.Fatalf("comment not removed from cache: %+v", r)
	}
}

func TestSessionRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/games/5", "")
	env.do(t, http.MethodGet, "/games/5/reviews", "")

	status, _ := env.do(t, http.MethodDelete, "/session", "")
	if status != http.StatusNoContent || env.session.Identified() {
		t.Fatalf("sign out = %d identified=%v", status, env.session.Identified())
	}
	if env.reviews.GameReviews(5) != nil {
		t.Fatal("sign out should drop cached reviews")
	}

	status, _ = env.do(t, http.MethodPut, "/session", `{"user_id":"u2"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("missing token = %d", status)
	}

	status, body := env.do(t, http.MethodPut, "/session", `{"token":"tok2","user_id":"u2"}`)
	if status != http.StatusOK || body["identified"] != true || body["user_id"] != "u2" {
		t.Fatalf("sign in = %d %v", status, body)
	}
	if env.session.Token() != "tok2" {
		t.Fatalf("token = %q", env.session.Token())
	}
}

func TestPurgeGameDetails(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/games/5", "")

	status, _ := env.do(t, http.MethodDelete, "/games/cache", "")
	if status != http.StatusNoContent {
		t.Fatalf("purge = %d", status)
	}
	if env.catalog.Cached(5) {
		t.Fatal("details cache should be empty after purge")
	}
}
