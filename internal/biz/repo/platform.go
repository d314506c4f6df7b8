package repo

import (
	"context"

	"github.com/itspaddysday/paddybot/internal/biz/domain"
)

// PlatformRepo is the social-platform collaborator interface.
// Responsible for fetching inbox items and content from the platform API;
// authentication, rate limiting and pagination live behind it.
type PlatformRepo interface {
	// ListUnreadInbox returns the unread inbox. Finite per call, not the
	// live-stream variant.
	ListUnreadInbox(ctx context.Context) ([]domain.Message, error)

	// StreamSubmissions returns the newest posts of a community spec
	// (single name or the platform's multi-community combination).
	// limit <= 0 means unbounded.
	StreamSubmissions(ctx context.Context, communitySpec string, limit int) ([]domain.ContentItem, error)

	// StreamComments returns the newest comments of a community spec.
	// limit <= 0 means unbounded.
	StreamComments(ctx context.Context, communitySpec string, limit int) ([]domain.ContentItem, error)

	// Reply posts a reply under the item with the given fullname.
	Reply(ctx context.Context, itemID, text string) error

	// MarkRead marks an inbox message read.
	MarkRead(ctx context.Context, messageID string) error

	// FindExactCommunity resolves a name to exactly one existing
	// community. Returns nil (no error) when zero or multiple match.
	FindExactCommunity(ctx context.Context, name string) (*domain.Community, error)

	// ListModeratedCommunities returns the communities an author moderates.
	ListModeratedCommunities(ctx context.Context, author string) ([]domain.Community, error)

	// ParentOf returns the content item a mention hangs off.
	ParentOf(ctx context.Context, msg domain.Message) (*domain.ContentItem, error)

	// RepliesOf returns the direct replies of a content item.
	RepliesOf(ctx context.Context, item domain.ContentItem) ([]domain.ContentItem, error)
}
