// models/filter.go
package models

// FilterSpec selects games by classification and minimum rating.
// The zero value matches everything.
type FilterSpec struct {
	Genres             []string `json:"genres,omitempty"`
	Themes             []string `json:"themes,omitempty"`
	Platforms          []string `json:"platforms,omitempty"`
	GameModes          []string `json:"game_modes,omitempty"`
	PlayerPerspectives []string `json:"player_perspectives,omitempty"`
	MinRating          float64  `json:"min_rating,omitempty"`
}

func (f FilterSpec) IsEmpty() bool {
	return len(f.Genres) == 0 &&
		len(f.Themes) == 0 &&
		len(f.Platforms) == 0 &&
		len(f.GameModes) == 0 &&
		len(f.PlayerPerspectives) == 0 &&
		f.MinRating <= 0
}

// SortKey names a sort order; a leading "-" means descending.
type SortKey string

const (
	SortNone          SortKey = ""
	SortByName        SortKey = "name"
	SortByNameDesc    SortKey = "-name"
	SortByRating      SortKey = "rating"
	SortByRatingDesc  SortKey = "-rating"
	SortByRelease     SortKey = "release_date"
	SortByReleaseDesc SortKey = "-release_date"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNone, SortByName, SortByNameDesc, SortByRating, SortByRatingDesc, SortByRelease, SortByReleaseDesc:
		return true
	}
	return false
}
