// models/review.go
package models

import "time"

// Author is the lightweight user reference attached to reviews and comments.
type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Review struct {
	ID        string    `json:"id"`
	GameID    int64     `json:"game_id"`
	User      Author    `json:"user"`
	Rating    int       `json:"rating"` // 1..5
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LikesCount    int  `json:"likes_count"`
	ViewerLiked   bool `json:"viewer_liked"`
	CommentsCount int  `json:"comments_count"`

	// Comments stays nil (JSON null) until explicitly fetched; a fetched empty
	// thread is []. Once non-nil, CommentsCount == len(Comments).
	Comments []Comment `json:"comments"`
}

// CommentsLoaded reports whether the comment thread has been materialized.
func (r Review) CommentsLoaded() bool { return r.Comments != nil }

// Clone keeps the nil/empty distinction of Comments.
func (r Review) Clone() Review {
	out := r
	if r.Comments != nil {
		out.Comments = make([]Comment, len(r.Comments))
		copy(out.Comments, r.Comments)
	}
	return out
}

type Comment struct {
	ID        string    `json:"id"`
	ReviewID  string    `json:"review_id"`
	User      Author    `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
