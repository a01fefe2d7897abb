// services/filter.go
package services

import (
	"slices"
	"strings"

	"game-catalog-sync/models"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
)

// abbreviations maps short codes to the full names remote data tends to use.
// Keys are folded; lookups go both ways.
var abbreviations = map[string]string{
	// platforms
	"pc":     "PC (Microsoft Windows)",
	"ps2":    "PlayStation 2",
	"ps3":    "PlayStation 3",
	"ps4":    "PlayStation 4",
	"ps5":    "PlayStation 5",
	"psp":    "PlayStation Portable",
	"vita":   "PlayStation Vita",
	"x360":   "Xbox 360",
	"xone":   "Xbox One",
	"xsx":    "Xbox Series X|S",
	"switch": "Nintendo Switch",
	"3ds":    "Nintendo 3DS",
	"wiiu":   "Wii U",

	// genres
	"rpg":  "Role-playing (RPG)",
	"rts":  "Real Time Strategy (RTS)",
	"tbs":  "Turn-based strategy (TBS)",
	"fps":  "Shooter",
	"moba": "MOBA",
	"sim":  "Simulator",
	"p&c":  "Point-and-click",
	"hns":  "Hack and slash/Beat 'em up",
}

// fullNames is the reverse index of abbreviations.
var fullNames = func() map[string][]string {
	out := make(map[string][]string, len(abbreviations))
	for short, full := range abbreviations {
		k := fold(full)
		out[k] = append(out[k], short)
	}
	for k := range out {
		slices.Sort(out[k])
	}
	return out
}()

// fold lowercases with Unicode case folding and strips accents, so "Pokémon" and "POKEMON" compare equal.
func fold(s string) string {
	return cases.Fold().String(unidecode.Unidecode(strings.TrimSpace(s)))
}

// forms returns the folded raw value plus its canonical counterparts from the abbreviation table.
func forms(s string, withTable bool) []string {
	f := fold(s)
	if f == "" {
		return nil
	}
	out := []string{f}
	if !withTable {
		return out
	}
	if full, ok := abbreviations[f]; ok {
		out = append(out, fold(full))
	}
	out = append(out, fullNames[f]...)
	return out
}

// containsEither is case-insensitive substring containment in both directions.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// matchesAny reports whether any of the game's values satisfies any selected value.
func matchesAny(values, selected []string, withTable bool) bool {
	for _, sel := range selected {
		selForms := forms(sel, withTable)
		for _, v := range values {
			for _, vf := range forms(v, withTable) {
				for _, sf := range selForms {
					if containsEither(vf, sf) {
						return true
					}
				}
			}
		}
	}
	return false
}

// Matches evaluates spec against g: OR within a category, AND across non-empty
// categories. A game without values for a filtered category never matches it.
func Matches(g models.GameSummary, spec models.FilterSpec) bool {
	if spec.IsEmpty() {
		return true
	}

	categories := []struct {
		values, selected []string
		withTable        bool
	}{
		{g.Genres, spec.Genres, true},
		{g.Platforms, spec.Platforms, true},
		{g.Themes, spec.Themes, false},
		{g.GameModes, spec.GameModes, false},
		{g.PlayerPerspectives, spec.PlayerPerspectives, false},
	}
	for _, c := range categories {
		if len(c.selected) == 0 {
			continue
		}
		if len(c.values) == 0 || !matchesAny(c.values, c.selected, c.withTable) {
			return false
		}
	}

	if spec.MinRating > 0 {
		r, ok := g.Rating.Float()
		if !ok || r < spec.MinRating {
			return false
		}
	}
	return true
}

// FilterGames keeps the games matching spec, preserving order.
func FilterGames(games []models.GameSummary, spec models.FilterSpec) []models.GameSummary {
	out := make([]models.GameSummary, 0, len(games))
	for _, g := range games {
		if Matches(g, spec) {
			out = append(out, g)
		}
	}
	return out
}

// SortGames returns a stably sorted copy. Unrated or undated games go last in either direction.
func SortGames(games []models.GameSummary, key models.SortKey) []models.GameSummary {
	out := slices.Clone(games)
	if key == models.SortNone {
		return out
	}
	desc := strings.HasPrefix(string(key), "-")
	field := strings.TrimPrefix(string(key), "-")

	dir := func(c int) int {
		if desc {
			return -c
		}
		return c
	}

	slices.SortStableFunc(out, func(a, b models.GameSummary) int {
		switch field {
		case "rating":
			ra, oka := a.Rating.Float()
			rb, okb := b.Rating.Float()
			if c := missingLast(oka, okb); c != 0 || !oka {
				return c
			}
			return dir(compareFloat(ra, rb))
		case "release_date":
			if c := missingLast(a.ReleaseDate != nil, b.ReleaseDate != nil); c != 0 || a.ReleaseDate == nil {
				return c
			}
			return dir(a.ReleaseDate.Compare(*b.ReleaseDate))
		default:
			return dir(strings.Compare(fold(a.Name), fold(b.Name)))
		}
	})
	return out
}

func missingLast(hasA, hasB bool) int {
	switch {
	case hasA == hasB:
		return 0
	case hasA:
		return -1
	default:
		return 1
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
