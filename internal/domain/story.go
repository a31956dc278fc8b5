package domain

import "time"

// ImageLayout enumerates supported story illustration layouts.
type ImageLayout string

const (
	ImageLayoutHeader ImageLayout = "header"
	ImageLayoutSide   ImageLayout = "side"
	ImageLayoutSquare ImageLayout = "square"
)

// ValidImageLayout reports whether the given layout is one the pipeline accepts.
func ValidImageLayout(l ImageLayout) bool {
	switch l {
	case ImageLayoutHeader, ImageLayoutSide, ImageLayoutSquare:
		return true
	}
	return false
}

// Story is one generated illustrated story plus its printable worksheet.
type Story struct {
	ID           string
	UserID       string
	Topic        string
	Grade        string
	Subject      string
	ImageLayout  ImageLayout
	StoryURL     string
	WorksheetURL string
	CreatedAt    time.Time
}

// Published reports whether both artifacts exist, which is the condition for
// showing the story in the public gallery.
func (s Story) Published() bool {
	return s.StoryURL != "" && s.WorksheetURL != ""
}
