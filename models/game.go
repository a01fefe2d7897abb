// models/game.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// RatingNotRated is what an unrated game serializes to.
const RatingNotRated = "N/A"

// Rating is a 0–5 score with one decimal, or "not rated".
type Rating struct {
	value float64
	rated bool
}

// NotRated is the sentinel rating.
var NotRated = Rating{}

// NewRating rounds v to one decimal, half away from zero.
func NewRating(v float64) Rating {
	return Rating{value: math.Round(v*10) / 10, rated: true}
}

// Float returns the numeric rating and whether the game is rated at all.
func (r Rating) Float() (float64, bool) {
	return r.value, r.rated
}

func (r Rating) String() string {
	if !r.rated {
		return RatingNotRated
	}
	return strconv.FormatFloat(r.value, 'f', 1, 64)
}

func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*r = NotRated
	case float64:
		*r = NewRating(v)
	case string:
		if v == RatingNotRated || v == "" {
			*r = NotRated
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid rating %q: %w", v, err)
		}
		*r = NewRating(f)
	default:
		return fmt.Errorf("invalid rating %s", string(data))
	}
	return nil
}

// GameRef is a lightweight pointer to a related game.
type GameRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

// GameSummary is the canonical game shape every cache reads.
type GameSummary struct {
	ID       int64  `json:"id"`
	RemoteID int64  `json:"remote_id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	CoverURL string `json:"cover_url,omitempty"`

	// 🏷️ Classification
	Genres             []string `json:"genres"`
	Platforms          []string `json:"platforms"`
	Themes             []string `json:"themes"`
	GameModes          []string `json:"game_modes"`
	PlayerPerspectives []string `json:"player_perspectives"`

	Rating      Rating     `json:"rating"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`

	// 🔗 Relations
	SimilarGames         []GameRef `json:"similar_games"`
	DLCs                 []GameRef `json:"dlcs"`
	Expansions           []GameRef `json:"expansions"`
	StandaloneExpansions []GameRef `json:"standalone_expansions"`
	Remakes              []GameRef `json:"remakes"`
	Remasters            []GameRef `json:"remasters"`
}

// Clone returns a deep copy so snapshots never share backing arrays with the cache.
func (g GameSummary) Clone() GameSummary {
	out := g
	out.Genres = cloneStrings(g.Genres)
	out.Platforms = cloneStrings(g.Platforms)
	out.Themes = cloneStrings(g.Themes)
	out.GameModes = cloneStrings(g.GameModes)
	out.PlayerPerspectives = cloneStrings(g.PlayerPerspectives)
	out.SimilarGames = cloneRefs(g.SimilarGames)
	out.DLCs = cloneRefs(g.DLCs)
	out.Expansions = cloneRefs(g.Expansions)
	out.StandaloneExpansions = cloneRefs(g.StandaloneExpansions)
	out.Remakes = cloneRefs(g.Remakes)
	out.Remasters = cloneRefs(g.Remasters)
	if g.ReleaseDate != nil {
		t := *g.ReleaseDate
		out.ReleaseDate = &t
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRefs(in []GameRef) []GameRef {
	out := make([]GameRef, len(in))
	copy(out, in)
	return out
}
