package reddit

import "encoding/json"

// Thing is the generic API envelope: a kind tag plus a payload.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// listing is the paginated container the API wraps collections in.
type listing struct {
	Data struct {
		After    string  `json:"after"`
		Children []Thing `json:"children"`
	} `json:"data"`
}

// Message is an inbox item (kind t1 for comment-context mentions, t4 for
// private messages).
type Message struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	ParentID   string  `json:"parent_id"`
	CreatedUTC float64 `json:"created_utc"`
	WasComment bool    `json:"was_comment"`
}

// Link is a submission (kind t3).
type Link struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

// Comment is a comment (kind t1).
type Comment struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	LinkID     string  `json:"link_id"`
	CreatedUTC float64 `json:"created_utc"`
}

// Subreddit carries the fields of a community we care about.
type Subreddit struct {
	DisplayName string `json:"display_name"`
}

// tokenResponse is the OAuth token grant payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
