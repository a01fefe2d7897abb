// services/normalize.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"game-catalog-sync/models"

	"github.com/gosimple/slug"
	"github.com/tidwall/gjson"
)

// ErrInvalidGameRecord is returned for payloads that are not a JSON object with an id.
var ErrInvalidGameRecord = errors.New("invalid game record")

// Remote records arrive either snake_case (IGDB style) or camelCase. Each canonical
// field lists its accepted keys; the first one present wins.
var (
	keysID                 = []string{"id"}
	keysRemoteID           = []string{"igdb_id", "igdbId", "remote_id", "remoteId"}
	keysName               = []string{"name", "title"}
	keysSlug               = []string{"slug"}
	keysCover              = []string{"cover", "cover_url", "coverUrl"}
	keysGenres             = []string{"genres"}
	keysPlatforms          = []string{"platforms"}
	keysThemes             = []string{"themes"}
	keysGameModes          = []string{"game_modes", "gameModes"}
	keysPlayerPerspectives = []string{"player_perspectives", "playerPerspectives"}
	keysAggregatedRating   = []string{"aggregated_rating", "aggregatedRating"}
	keysUserRating         = []string{"rating", "total_rating", "totalRating"}
	keysReleaseDate        = []string{"first_release_date", "firstReleaseDate", "release_date", "releaseDate"}
	keysSimilar            = []string{"similar_games", "similarGames"}
	keysDLCs               = []string{"dlcs"}
	keysExpansions         = []string{"expansions"}
	keysStandalone         = []string{"standalone_expansions", "standaloneExpansions"}
	keysRemakes            = []string{"remakes"}
	keysRemasters          = []string{"remasters"}
)

// NormalizeGame maps one remote game record into the canonical GameSummary.
// It is the only place in the module that knows about remote field naming.
func NormalizeGame(raw []byte) (models.GameSummary, error) {
	if !gjson.ValidBytes(raw) {
		return models.GameSummary{}, fmt.Errorf("%w: malformed json", ErrInvalidGameRecord)
	}
	rec := gjson.ParseBytes(raw)
	if !rec.IsObject() {
		return models.GameSummary{}, fmt.Errorf("%w: not an object", ErrInvalidGameRecord)
	}
	id := pick(rec, keysID)
	if !id.Exists() || id.Int() == 0 {
		return models.GameSummary{}, fmt.Errorf("%w: missing id", ErrInvalidGameRecord)
	}

	g := models.GameSummary{
		ID:   id.Int(),
		Name: pick(rec, keysName).String(),

		Genres:             names(pick(rec, keysGenres)),
		Platforms:          names(pick(rec, keysPlatforms)),
		Themes:             names(pick(rec, keysThemes)),
		GameModes:          names(pick(rec, keysGameModes)),
		PlayerPerspectives: names(pick(rec, keysPlayerPerspectives)),

		Rating:      normalizeRating(rec),
		ReleaseDate: releaseDate(pick(rec, keysReleaseDate)),
		CoverURL:    coverURL(pick(rec, keysCover)),

		SimilarGames:         refs(pick(rec, keysSimilar)),
		DLCs:                 refs(pick(rec, keysDLCs)),
		Expansions:           refs(pick(rec, keysExpansions)),
		StandaloneExpansions: refs(pick(rec, keysStandalone)),
		Remakes:              refs(pick(rec, keysRemakes)),
		Remasters:            refs(pick(rec, keysRemasters)),
	}

	g.RemoteID = g.ID
	if r := pick(rec, keysRemoteID); r.Exists() && r.Int() != 0 {
		g.RemoteID = r.Int()
	}

	g.Slug = pick(rec, keysSlug).String()
	if g.Slug == "" && g.Name != "" {
		g.Slug = slug.Make(g.Name)
	}
	return g, nil
}

// NormalizeGames normalizes a batch, skipping (and reporting) records that fail.
func NormalizeGames(raws []json.RawMessage) ([]models.GameSummary, []error) {
	out := make([]models.GameSummary, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		g, err := NormalizeGame(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, g)
	}
	return out, errs
}

// ScaleRating converts a 0–100 score to 0–5, rounded half away from zero to one decimal.
func ScaleRating(raw float64) models.Rating {
	// raw/20 rounded to tenths == round(raw/2)/10, which keeps halves exact.
	return models.NewRating(math.Round(raw/2) / 10)
}

func normalizeRating(rec gjson.Result) models.Rating {
	for _, keys := range [][]string{keysAggregatedRating, keysUserRating} {
		r := pick(rec, keys)
		if r.Type == gjson.Number {
			return ScaleRating(r.Float())
		}
	}
	return models.NotRated
}

func pick(rec gjson.Result, keys []string) gjson.Result {
	for _, k := range keys {
		if r := rec.Get(k); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// names accepts ["Action"] as well as [{"id":1,"name":"Action"}]. Always non-nil.
func names(list gjson.Result) []string {
	out := []string{}
	if !list.IsArray() {
		return out
	}
	for _, item := range list.Array() {
		var name string
		switch {
		case item.IsObject():
			name = item.Get("name").String()
		case item.Type == gjson.String:
			name = item.String()
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// refs accepts objects or bare ids. Always non-nil.
func refs(list gjson.Result) []models.GameRef {
	out := []models.GameRef{}
	if !list.IsArray() {
		return out
	}
	for _, item := range list.Array() {
		if item.Type == gjson.Number {
			out = append(out, models.GameRef{ID: item.Int()})
			continue
		}
		if !item.IsObject() {
			continue
		}
		ref := models.GameRef{
			ID:       item.Get("id").Int(),
			Name:     item.Get("name").String(),
			Slug:     item.Get("slug").String(),
			CoverURL: coverURL(pick(item, keysCover)),
		}
		if ref.Slug == "" && ref.Name != "" {
			ref.Slug = slug.Make(ref.Name)
		}
		out = append(out, ref)
	}
	return out
}

func coverURL(cover gjson.Result) string {
	var u string
	switch {
	case cover.IsObject():
		u = cover.Get("url").String()
		if u == "" {
			if imageID := cover.Get("image_id").String(); imageID != "" {
				u = "https://images.igdb.com/igdb/image/upload/t_cover_big/" + imageID + ".jpg"
			}
		}
	case cover.Type == gjson.String:
		u = cover.String()
	}
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return u
}

// releaseDate takes unix seconds or an RFC 3339 / date-only string.
func releaseDate(v gjson.Result) *time.Time {
	switch v.Type {
	case gjson.Number:
		t := time.Unix(v.Int(), 0).UTC()
		return &t
	case gjson.String:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v.String()); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}
