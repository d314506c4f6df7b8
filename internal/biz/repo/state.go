package repo

import "context"

// StateRepo is the subscription-state repository interface. It owns the four
// persistent sets exclusively; no component mutates them any other way.
//
// Every add is idempotent: inserting an identifier that is already present is
// a no-op, never an error.
type StateRepo interface {
	// BlacklistCommunity disables monitoring for a community.
	BlacklistCommunity(ctx context.Context, name string) error

	// WhitelistCommunity enables monitoring for a community.
	WhitelistCommunity(ctx context.Context, name string) error

	// ListWhitelistedCommunities returns the monitored communities in
	// insertion order.
	ListWhitelistedCommunities(ctx context.Context) ([]string, error)

	// BlacklistAuthor opts an author out of receiving replies.
	BlacklistAuthor(ctx context.Context, authorID string) error

	// IsAuthorBlacklisted reports whether an author opted out.
	IsAuthorBlacklisted(ctx context.Context, authorID string) (bool, error)

	// IsResponded reports whether the bot already replied to an item.
	IsResponded(ctx context.Context, itemID string) (bool, error)

	// RecordResponded marks an item as replied to. Called only after a
	// confirmed successful send.
	RecordResponded(ctx context.Context, itemID string) error

	// Flush persists in-memory state. Best-effort at shutdown; a no-op
	// for backends that write through.
	Flush() error

	// Close releases the backing resource.
	Close() error
}
