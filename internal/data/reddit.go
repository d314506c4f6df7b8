package data

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/itspaddysday/paddybot/internal/biz/domain"
	"github.com/itspaddysday/paddybot/internal/biz/repo"
	"github.com/itspaddysday/paddybot/internal/infra/reddit"
)

// redditRepo implements the platform repository over the reddit client,
// mapping wire types to domain entities.
type redditRepo struct {
	client *reddit.Client
}

// NewRedditRepo creates a new platform repository.
func NewRedditRepo(client *reddit.Client) repo.PlatformRepo {
	return &redditRepo{client: client}
}

func (r *redditRepo) ListUnreadInbox(ctx context.Context) ([]domain.Message, error) {
	wire, err := r.client.UnreadMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unread inbox: %w", err)
	}

	messages := make([]domain.Message, 0, len(wire))
	for _, m := range wire {
		messages = append(messages, domain.Message{
			ID:         m.Name,
			Subject:    m.Subject,
			Body:       m.Body,
			Author:     m.Author,
			Community:  m.Subreddit,
			ParentID:   m.ParentID,
			CreatedAt:  time.Unix(int64(m.CreatedUTC), 0),
			WasComment: m.WasComment,
		})
	}
	return messages, nil
}

func (r *redditRepo) StreamSubmissions(ctx context.Context, communitySpec string, limit int) ([]domain.ContentItem, error) {
	links, err := r.client.NewSubmissions(ctx, communitySpec, limit)
	if err != nil {
		return nil, fmt.Errorf("stream submissions: %w", err)
	}

	items := make([]domain.ContentItem, 0, len(links))
	for _, l := range links {
		items = append(items, linkToItem(l))
	}
	return items, nil
}

func (r *redditRepo) StreamComments(ctx context.Context, communitySpec string, limit int) ([]domain.ContentItem, error) {
	comments, err := r.client.NewComments(ctx, communitySpec, limit)
	if err != nil {
		return nil, fmt.Errorf("stream comments: %w", err)
	}

	items := make([]domain.ContentItem, 0, len(comments))
	for _, c := range comments {
		items = append(items, commentToItem(c))
	}
	return items, nil
}

func (r *redditRepo) Reply(ctx context.Context, itemID, text string) error {
	return r.client.Comment(ctx, itemID, text)
}

func (r *redditRepo) MarkRead(ctx context.Context, messageID string) error {
	return r.client.ReadMessage(ctx, messageID)
}

func (r *redditRepo) FindExactCommunity(ctx context.Context, name string) (*domain.Community, error) {
	names, err := r.client.SearchSubredditNames(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find community: %w", err)
	}
	// Exactly one match resolves; zero or multiple do not.
	if len(names) != 1 {
		return nil, nil
	}
	return &domain.Community{DisplayName: names[0]}, nil
}

func (r *redditRepo) ListModeratedCommunities(ctx context.Context, author string) ([]domain.Community, error) {
	if author == "" {
		return nil, fmt.Errorf("empty author")
	}
	subs, err := r.client.ModeratedSubreddits(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("list moderated communities: %w", err)
	}

	communities := make([]domain.Community, 0, len(subs))
	for _, s := range subs {
		communities = append(communities, domain.Community{DisplayName: s.DisplayName})
	}
	return communities, nil
}

func (r *redditRepo) ParentOf(ctx context.Context, msg domain.Message) (*domain.ContentItem, error) {
	if msg.ParentID == "" {
		return nil, nil
	}
	things, err := r.client.Info(ctx, msg.ParentID)
	if err != nil {
		return nil, fmt.Errorf("parent lookup: %w", err)
	}
	if len(things) == 0 {
		return nil, nil
	}

	item, err := thingToItem(things[0])
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *redditRepo) RepliesOf(ctx context.Context, item domain.ContentItem) ([]domain.ContentItem, error) {
	kind, id, ok := strings.Cut(item.ID, "_")
	if !ok {
		return nil, fmt.Errorf("malformed fullname %q", item.ID)
	}

	var comments []reddit.Comment
	var err error
	switch kind {
	case "t3":
		comments, err = r.client.LinkComments(ctx, id)
	case "t1":
		// A comment's replies live in its submission's thread.
		article := strings.TrimPrefix(linkIDOf(item), "t3_")
		if article == "" {
			return nil, nil
		}
		comments, err = r.client.CommentReplies(ctx, article, item.ID)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("replies lookup: %w", err)
	}

	items := make([]domain.ContentItem, 0, len(comments))
	for _, c := range comments {
		items = append(items, commentToItem(c))
	}
	return items, nil
}

// linkIDOf recovers the submission fullname a comment belongs to from its
// permalink ("/r/<sub>/comments/<article>/...").
func linkIDOf(item domain.ContentItem) string {
	parts := strings.Split(item.Permalink, "/")
	for i, p := range parts {
		if p == "comments" && i+1 < len(parts) {
			return "t3_" + parts[i+1]
		}
	}
	return ""
}

func linkToItem(l reddit.Link) domain.ContentItem {
	return domain.ContentItem{
		ID:        l.Name,
		Title:     l.Title,
		Selftext:  l.Selftext,
		Author:    l.Author,
		Community: l.Subreddit,
		Permalink: l.Permalink,
		CreatedAt: time.Unix(int64(l.CreatedUTC), 0),
	}
}

func commentToItem(c reddit.Comment) domain.ContentItem {
	return domain.ContentItem{
		ID:        c.Name,
		Body:      c.Body,
		Author:    c.Author,
		Community: c.Subreddit,
		Permalink: c.Permalink,
		CreatedAt: time.Unix(int64(c.CreatedUTC), 0),
	}
}

func thingToItem(t reddit.Thing) (*domain.ContentItem, error) {
	switch t.Kind {
	case "t3":
		var link reddit.Link
		if err := json.Unmarshal(t.Data, &link); err != nil {
			return nil, fmt.Errorf("decode link: %w", err)
		}
		item := linkToItem(link)
		return &item, nil
	case "t1":
		var comment reddit.Comment
		if err := json.Unmarshal(t.Data, &comment); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		item := commentToItem(comment)
		return &item, nil
	default:
		return nil, fmt.Errorf("unexpected thing kind %q", t.Kind)
	}
}
