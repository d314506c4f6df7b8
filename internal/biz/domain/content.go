package domain

import (
	"strings"
	"time"
)

// ContentItem is a post, comment or message body the bot may correct.
// The platform owns the item; the core only reads it.
type ContentItem struct {
	ID        string // platform fullname, also the dedup key
	Title     string
	Body      string
	Selftext  string
	Author    string
	Community string
	Permalink string
	CreatedAt time.Time
}

// SearchText builds the lowercased haystack the matcher runs over.
// Missing fields contribute an empty string.
func (c *ContentItem) SearchText() string {
	return strings.ToLower(c.Title + " " + c.Body + " " + c.Selftext)
}

// misspellings that warrant a correction. "paddy" is the correct spelling
// and must never match.
var misspellings = []string{
	"st patty",
	"st. patty",
	"saint patty",
}

// ContainsMisspelling reports whether the haystack contains any of the
// "patty" variants. Plain substring matching, no word boundaries.
func ContainsMisspelling(searchText string) bool {
	for _, pattern := range misspellings {
		if strings.Contains(searchText, pattern) {
			return true
		}
	}
	return false
}
