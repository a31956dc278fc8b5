package domain

import "time"

// Rating is a 1..5 score a user gave a gallery story. One rating per
// (story, user); re-rating overwrites.
type Rating struct {
	ID        string
	StoryID   string
	UserID    string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment is a public remark on a gallery story.
type Comment struct {
	ID         string
	StoryID    string
	UserID     string
	AuthorName string
	Content    string
	CreatedAt  time.Time
}
