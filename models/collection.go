// models/collection.go
package models

import "fmt"

type Status string

const (
	StatusWantToPlay Status = "want_to_play"
	StatusPlaying    Status = "playing"
	StatusPlayed     Status = "played"
)

// Statuses is the fixed bucket scan order.
var Statuses = []Status{StatusWantToPlay, StatusPlaying, StatusPlayed}

func (s Status) Valid() bool {
	switch s {
	case StatusWantToPlay, StatusPlaying, StatusPlayed:
		return true
	}
	return false
}

// ParseStatus validates a status literal coming from outside the module.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown collection status %q", raw)
	}
	return s, nil
}

// CollectionEntry is a game sitting in one status bucket.
type CollectionEntry struct {
	GameSummary
	Status Status `json:"status"`
}

// Collection holds the user's games bucketed by status.
// A game id lives in at most one bucket.
type Collection struct {
	WantToPlay []CollectionEntry `json:"want_to_play"`
	Playing    []CollectionEntry `json:"playing"`
	Played     []CollectionEntry `json:"played"`
}

// NewCollection returns a collection with three empty (non-nil) buckets.
func NewCollection() Collection {
	return Collection{
		WantToPlay: []CollectionEntry{},
		Playing:    []CollectionEntry{},
		Played:     []CollectionEntry{},
	}
}

// Bucket returns the entries for a status, nil for an unknown one.
func (c Collection) Bucket(s Status) []CollectionEntry {
	switch s {
	case StatusWantToPlay:
		return c.WantToPlay
	case StatusPlaying:
		return c.Playing
	case StatusPlayed:
		return c.Played
	}
	return nil
}

// SetBucket replaces one bucket in place.
func (c *Collection) SetBucket(s Status, entries []CollectionEntry) {
	switch s {
	case StatusWantToPlay:
		c.WantToPlay = entries
	case StatusPlaying:
		c.Playing = entries
	case StatusPlayed:
		c.Played = entries
	}
}

// Find scans buckets in Statuses order and returns the first match.
func (c Collection) Find(gameID int64) (CollectionEntry, bool) {
	for _, s := range Statuses {
		for _, e := range c.Bucket(s) {
			if e.ID == gameID {
				return e, true
			}
		}
	}
	return CollectionEntry{}, false
}

// All flattens the buckets in scan order.
func (c Collection) All() []CollectionEntry {
	out := make([]CollectionEntry, 0, len(c.WantToPlay)+len(c.Playing)+len(c.Played))
	for _, s := range Statuses {
		out = append(out, c.Bucket(s)...)
	}
	return out
}

func (c Collection) Clone() Collection {
	out := Collection{}
	for _, s := range Statuses {
		src := c.Bucket(s)
		dst := make([]CollectionEntry, len(src))
		for i, e := range src {
			dst[i] = CollectionEntry{GameSummary: e.GameSummary.Clone(), Status: e.Status}
		}
		out.SetBucket(s, dst)
	}
	return out
}
