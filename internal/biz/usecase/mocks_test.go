package usecase

import (
	"context"
	"errors"

	"github.com/itspaddysday/paddybot/internal/biz/domain"
)

// Mock implementations

type mockStateRepo struct {
	blacklistedSubs  []string
	whitelistedSubs  []string
	blacklistedUsers []string
	responded        []string
}

func appendUnique(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func (m *mockStateRepo) BlacklistCommunity(ctx context.Context, name string) error {
	m.blacklistedSubs = appendUnique(m.blacklistedSubs, name)
	return nil
}

func (m *mockStateRepo) WhitelistCommunity(ctx context.Context, name string) error {
	m.whitelistedSubs = appendUnique(m.whitelistedSubs, name)
	return nil
}

func (m *mockStateRepo) ListWhitelistedCommunities(ctx context.Context) ([]string, error) {
	return m.whitelistedSubs, nil
}

func (m *mockStateRepo) BlacklistAuthor(ctx context.Context, authorID string) error {
	m.blacklistedUsers = appendUnique(m.blacklistedUsers, authorID)
	return nil
}

func (m *mockStateRepo) IsAuthorBlacklisted(ctx context.Context, authorID string) (bool, error) {
	return contains(m.blacklistedUsers, authorID), nil
}

func (m *mockStateRepo) IsResponded(ctx context.Context, itemID string) (bool, error) {
	return contains(m.responded, itemID), nil
}

func (m *mockStateRepo) RecordResponded(ctx context.Context, itemID string) error {
	m.responded = appendUnique(m.responded, itemID)
	return nil
}

func (m *mockStateRepo) Flush() error { return nil }
func (m *mockStateRepo) Close() error { return nil }

type replyCall struct {
	itemID string
	text   string
}

type mockPlatformRepo struct {
	communities  map[string]domain.Community // exact-name search results
	moderatedBy  map[string][]domain.Community
	moderatedErr error

	replies  []replyCall
	replyErr error
	marked   []string

	inbox         []domain.Message
	submissions   []domain.ContentItem
	comments      []domain.ContentItem
	parent        *domain.ContentItem
	parentReplies []domain.ContentItem
}

func (m *mockPlatformRepo) ListUnreadInbox(ctx context.Context) ([]domain.Message, error) {
	return m.inbox, nil
}

func (m *mockPlatformRepo) StreamSubmissions(ctx context.Context, spec string, limit int) ([]domain.ContentItem, error) {
	return m.submissions, nil
}

func (m *mockPlatformRepo) StreamComments(ctx context.Context, spec string, limit int) ([]domain.ContentItem, error) {
	return m.comments, nil
}

func (m *mockPlatformRepo) Reply(ctx context.Context, itemID, text string) error {
	if m.replyErr != nil {
		return m.replyErr
	}
	m.replies = append(m.replies, replyCall{itemID: itemID, text: text})
	return nil
}

func (m *mockPlatformRepo) MarkRead(ctx context.Context, messageID string) error {
	m.marked = append(m.marked, messageID)
	return nil
}

func (m *mockPlatformRepo) FindExactCommunity(ctx context.Context, name string) (*domain.Community, error) {
	if c, ok := m.communities[name]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *mockPlatformRepo) ListModeratedCommunities(ctx context.Context, author string) ([]domain.Community, error) {
	if m.moderatedErr != nil {
		return nil, m.moderatedErr
	}
	return m.moderatedBy[author], nil
}

func (m *mockPlatformRepo) ParentOf(ctx context.Context, msg domain.Message) (*domain.ContentItem, error) {
	return m.parent, nil
}

func (m *mockPlatformRepo) RepliesOf(ctx context.Context, item domain.ContentItem) ([]domain.ContentItem, error) {
	return m.parentReplies, nil
}

var errLookupDown = errors.New("lookup unavailable")
