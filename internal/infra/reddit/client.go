package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	authBaseURL = "https://www.reddit.com"
	apiBaseURL  = "https://oauth.reddit.com"

	// pageSize is the API's per-request listing cap.
	pageSize = 100
)

// Client is a thin adapter for the platform API. It handles the OAuth
// password grant, pacing after rate-limit responses and wire decoding.
// It does not retry beyond a single rate-limit wait.
type Client struct {
	AuthBaseURL string
	APIBaseURL  string
	HTTPClient  *http.Client

	username     string
	password     string
	clientID     string
	clientSecret string
	userAgent    string

	// ratelimitSeconds is how long to wait once when the API answers 429.
	ratelimitSeconds int

	token       string
	tokenExpiry time.Time
}

// Credentials carries the script-app account settings.
type Credentials struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// NewClient creates a new platform client.
func NewClient(creds Credentials, ratelimitSeconds int) *Client {
	return &Client{
		AuthBaseURL:      authBaseURL,
		APIBaseURL:       apiBaseURL,
		HTTPClient:       &http.Client{Timeout: 30 * time.Second},
		username:         creds.Username,
		password:         creds.Password,
		clientID:         creds.ClientID,
		clientSecret:     creds.ClientSecret,
		userAgent:        creds.UserAgent,
		ratelimitSeconds: ratelimitSeconds,
	}
}

// APIError is a non-2xx answer from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// IsTransient reports whether the failure is worth retrying on a later run.
func (e *APIError) IsTransient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.username},
		"password":   {c.password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.AuthBaseURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token grant returned no access token")
	}

	c.token = tok.AccessToken
	// renew a minute early
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return nil
}

// do performs an authenticated request and decodes the JSON answer into out
// (out may be nil). A single 429 waits the configured backoff and retries
// once.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, form url.Values, out any) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}

	retried := false
	for {
		req, err := c.newRequest(ctx, method, path, query, form)
		if err != nil {
			return err
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && !retried && c.ratelimitSeconds > 0 {
			resp.Body.Close()
			retried = true
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(c.ratelimitSeconds) * time.Second):
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		if out == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, form url.Values) (*http.Request, error) {
	u := c.APIBaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

// UnreadMessages returns the unread inbox.
func (c *Client) UnreadMessages(ctx context.Context) ([]Message, error) {
	var out []Message
	after := ""
	for {
		query := url.Values{"limit": {strconv.Itoa(pageSize)}}
		if after != "" {
			query.Set("after", after)
		}

		var page listing
		if err := c.do(ctx, http.MethodGet, "/message/unread", query, nil, &page); err != nil {
			return nil, err
		}
		for _, child := range page.Data.Children {
			var msg Message
			if err := json.Unmarshal(child.Data, &msg); err != nil {
				return nil, fmt.Errorf("decode message: %w", err)
			}
			out = append(out, msg)
		}
		after = page.Data.After
		if after == "" || len(page.Data.Children) == 0 {
			return out, nil
		}
	}
}

// NewSubmissions returns the newest submissions of a community spec
// ("a+b+c" combines communities). limit <= 0 walks the listing to its end.
func (c *Client) NewSubmissions(ctx context.Context, spec string, limit int) ([]Link, error) {
	var out []Link
	err := c.walkListing(ctx, "/r/"+url.PathEscape(spec)+"/new", limit, func(child Thing) error {
		var link Link
		if err := json.Unmarshal(child.Data, &link); err != nil {
			return fmt.Errorf("decode link: %w", err)
		}
		out = append(out, link)
		return nil
	})
	return out, err
}

// NewComments returns the newest comments of a community spec.
func (c *Client) NewComments(ctx context.Context, spec string, limit int) ([]Comment, error) {
	var out []Comment
	err := c.walkListing(ctx, "/r/"+url.PathEscape(spec)+"/comments", limit, func(child Thing) error {
		var comment Comment
		if err := json.Unmarshal(child.Data, &comment); err != nil {
			return fmt.Errorf("decode comment: %w", err)
		}
		out = append(out, comment)
		return nil
	})
	return out, err
}

// walkListing pages through a listing endpoint until limit items were seen
// or the listing ends.
func (c *Client) walkListing(ctx context.Context, path string, limit int, visit func(Thing) error) error {
	after := ""
	seen := 0
	for {
		per := pageSize
		if limit > 0 && limit-seen < per {
			per = limit - seen
		}
		query := url.Values{"limit": {strconv.Itoa(per)}}
		if after != "" {
			query.Set("after", after)
		}

		var page listing
		if err := c.do(ctx, http.MethodGet, path, query, nil, &page); err != nil {
			return err
		}
		for _, child := range page.Data.Children {
			if err := visit(child); err != nil {
				return err
			}
			seen++
			if limit > 0 && seen >= limit {
				return nil
			}
		}
		after = page.Data.After
		if after == "" || len(page.Data.Children) == 0 {
			return nil
		}
	}
}

// Comment posts a reply under the Thing with the given fullname.
func (c *Client) Comment(ctx context.Context, parentFullname, text string) error {
	form := url.Values{
		"thing_id": {parentFullname},
		"text":     {text},
		"api_type": {"json"},
	}
	return c.do(ctx, http.MethodPost, "/api/comment", nil, form, nil)
}

// ReadMessage marks an inbox message read.
func (c *Client) ReadMessage(ctx context.Context, fullname string) error {
	form := url.Values{"id": {fullname}}
	return c.do(ctx, http.MethodPost, "/api/read_message", nil, form, nil)
}

// SearchSubredditNames performs the exact-name community search.
func (c *Client) SearchSubredditNames(ctx context.Context, name string) ([]string, error) {
	query := url.Values{
		"query": {name},
		"exact": {"true"},
	}
	var result struct {
		Names []string `json:"names"`
	}
	err := c.do(ctx, http.MethodGet, "/api/search_reddit_names", query, nil, &result)
	if err != nil {
		// An unknown name answers 404; that is a miss, not a failure.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return result.Names, nil
}

// ModeratedSubreddits returns the communities a user moderates.
func (c *Client) ModeratedSubreddits(ctx context.Context, username string) ([]Subreddit, error) {
	var result struct {
		Data []Subreddit `json:"data"`
	}
	path := "/user/" + url.PathEscape(username) + "/moderated_subreddits"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Info fetches things by fullname.
func (c *Client) Info(ctx context.Context, fullnames ...string) ([]Thing, error) {
	query := url.Values{"id": {strings.Join(fullnames, ",")}}
	var page listing
	if err := c.do(ctx, http.MethodGet, "/api/info", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Data.Children, nil
}

// LinkComments returns the top-level comments of a submission.
func (c *Client) LinkComments(ctx context.Context, article string) ([]Comment, error) {
	query := url.Values{"depth": {"1"}}
	// The endpoint answers a two-element array: the link, then its comments.
	var pages []listing
	if err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(article), query, nil, &pages); err != nil {
		return nil, err
	}
	if len(pages) < 2 {
		return nil, nil
	}

	var out []Comment
	for _, child := range pages[1].Data.Children {
		if child.Kind != "t1" {
			continue // "more" stubs are skipped
		}
		var comment Comment
		if err := json.Unmarshal(child.Data, &comment); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		out = append(out, comment)
	}
	return out, nil
}

// CommentReplies returns the direct replies of a comment by loading its
// thread and filtering for children of the given fullname.
func (c *Client) CommentReplies(ctx context.Context, article, commentFullname string) ([]Comment, error) {
	query := url.Values{"depth": {"2"}}
	var pages []listing
	if err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(article), query, nil, &pages); err != nil {
		return nil, err
	}
	if len(pages) < 2 {
		return nil, nil
	}

	var out []Comment
	var collect func(children []Thing)
	collect = func(children []Thing) {
		for _, child := range children {
			if child.Kind != "t1" {
				continue
			}
			var node struct {
				Comment
				ParentID string `json:"parent_id"`
				Replies  json.RawMessage
			}
			if err := json.Unmarshal(child.Data, &node); err != nil {
				continue
			}
			if node.ParentID == commentFullname {
				out = append(out, node.Comment)
			}
			var nested listing
			if len(node.Replies) > 2 { // "" when the thread ends
				if err := json.Unmarshal(node.Replies, &nested); err == nil {
					collect(nested.Data.Children)
				}
			}
		}
	}
	collect(pages[1].Data.Children)
	return out, nil
}
