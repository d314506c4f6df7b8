package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itspaddysday/paddybot/internal/biz/domain"
	"github.com/itspaddysday/paddybot/internal/biz/usecase"
	"github.com/itspaddysday/paddybot/internal/conf"
)

// Mock implementations

type memState struct {
	whitelisted []string
	blacklisted []string
	users       []string
	responded   []string
	flushed     int
}

func (m *memState) add(list *[]string, id string) error {
	for _, v := range *list {
		if v == id {
			return nil
		}
	}
	*list = append(*list, id)
	return nil
}

func (m *memState) BlacklistCommunity(ctx context.Context, name string) error {
	return m.add(&m.blacklisted, name)
}

func (m *memState) WhitelistCommunity(ctx context.Context, name string) error {
	return m.add(&m.whitelisted, name)
}

func (m *memState) ListWhitelistedCommunities(ctx context.Context) ([]string, error) {
	return m.whitelisted, nil
}

func (m *memState) BlacklistAuthor(ctx context.Context, authorID string) error {
	return m.add(&m.users, authorID)
}

func (m *memState) IsAuthorBlacklisted(ctx context.Context, authorID string) (bool, error) {
	for _, v := range m.users {
		if v == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memState) IsResponded(ctx context.Context, itemID string) (bool, error) {
	for _, v := range m.responded {
		if v == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memState) RecordResponded(ctx context.Context, itemID string) error {
	return m.add(&m.responded, itemID)
}

func (m *memState) Flush() error {
	m.flushed++
	return nil
}

func (m *memState) Close() error { return nil }

type fakePlatform struct {
	inbox         []domain.Message
	submissions   []domain.ContentItem
	comments      []domain.ContentItem
	parent        *domain.ContentItem
	parentReplies []domain.ContentItem
	communities   map[string]domain.Community
	moderatedBy   map[string][]domain.Community

	replies    []string // item IDs replied to
	replyTexts []string
	marked     []string
	subSpecs   []string // community specs requested
	inboxErr   error
}

func (f *fakePlatform) ListUnreadInbox(ctx context.Context) ([]domain.Message, error) {
	return f.inbox, f.inboxErr
}

func (f *fakePlatform) StreamSubmissions(ctx context.Context, spec string, limit int) ([]domain.ContentItem, error) {
	f.subSpecs = append(f.subSpecs, spec)
	return f.submissions, nil
}

func (f *fakePlatform) StreamComments(ctx context.Context, spec string, limit int) ([]domain.ContentItem, error) {
	return f.comments, nil
}

func (f *fakePlatform) Reply(ctx context.Context, itemID, text string) error {
	f.replies = append(f.replies, itemID)
	f.replyTexts = append(f.replyTexts, text)
	return nil
}

func (f *fakePlatform) MarkRead(ctx context.Context, messageID string) error {
	f.marked = append(f.marked, messageID)
	return nil
}

func (f *fakePlatform) FindExactCommunity(ctx context.Context, name string) (*domain.Community, error) {
	if c, ok := f.communities[name]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakePlatform) ListModeratedCommunities(ctx context.Context, author string) ([]domain.Community, error) {
	return f.moderatedBy[author], nil
}

func (f *fakePlatform) ParentOf(ctx context.Context, msg domain.Message) (*domain.ContentItem, error) {
	return f.parent, nil
}

func (f *fakePlatform) RepliesOf(ctx context.Context, item domain.ContentItem) ([]domain.ContentItem, error) {
	return f.parentReplies, nil
}

// Tests

func newService(state *memState, platform *fakePlatform, dryRun bool) *SyncService {
	log := zap.NewNop().Sugar()
	responses := conf.DefaultResponses()
	responses.Correction = "It is spelled Paddy."

	cfg := &conf.Config{PostsLimit: 100, CommentsLimit: 0, DryRun: dryRun}
	dispatchUC := usecase.NewDispatchUsecase(state, platform, responses, log)
	scanUC := usecase.NewScanUsecase(state, platform, responses.Correction, dryRun, log)
	return NewSyncService(dispatchUC, scanUC, state, platform, responses, cfg, log)
}

func TestRunCycle_DirectMessageCommand(t *testing.T) {
	state := &memState{}
	platform := &fakePlatform{
		inbox: []domain.Message{{
			ID:      "t4_dm1",
			Subject: "!whitelist:testsub",
			Author:  "alice",
		}},
		communities: map[string]domain.Community{"testsub": {DisplayName: "testsub"}},
		moderatedBy: map[string][]domain.Community{"alice": {{DisplayName: "testsub"}}},
	}
	svc := newService(state, platform, false)

	require.NoError(t, svc.RunCycle(context.Background()))

	assert.Equal(t, []string{"testsub"}, state.whitelisted)
	require.Len(t, platform.replies, 1)
	assert.Equal(t, "t4_dm1", platform.replies[0])
	assert.Equal(t, conf.Render(conf.DefaultResponses().WhitelistSub, "testsub"), platform.replyTexts[0])
	assert.Equal(t, []string{"t4_dm1"}, platform.marked)
	// The whitelist picked up this cycle is already scanned.
	assert.Equal(t, []string{"testsub"}, platform.subSpecs)
	assert.Equal(t, 1, state.flushed)
}

func TestRunCycle_DirectMessageDryRun(t *testing.T) {
	state := &memState{}
	platform := &fakePlatform{
		inbox: []domain.Message{{ID: "t4_dm1", Subject: "!ignoreme", Author: "bob"}},
	}
	svc := newService(state, platform, true)

	require.NoError(t, svc.RunCycle(context.Background()))

	// State still mutates (the command executed) but nothing goes out.
	assert.Equal(t, []string{"bob"}, state.users)
	assert.Empty(t, platform.replies)
	assert.Empty(t, platform.marked)
}

func TestRunCycle_MentionAutoWhitelistsAndScansThread(t *testing.T) {
	parent := domain.ContentItem{
		ID:    "t3_post",
		Title: "happy st patty's day",
	}
	state := &memState{}
	platform := &fakePlatform{
		inbox: []domain.Message{{
			ID:         "t1_mention",
			Body:       "paddybot have a look at this",
			Author:     "dave",
			Community:  "newsub",
			ParentID:   "t3_post",
			WasComment: true,
		}},
		parent: &parent,
		parentReplies: []domain.ContentItem{
			{ID: "t1_r1", Body: "saint patty forever"},
			{ID: "t1_r2", Body: "nothing to see"},
		},
	}
	svc := newService(state, platform, false)

	require.NoError(t, svc.RunCycle(context.Background()))

	assert.Contains(t, state.whitelisted, "newsub")
	assert.Contains(t, state.responded, "t1_mention")
	// The matching parent and matching reply each got the correction.
	assert.ElementsMatch(t, []string{"t3_post", "t1_r1"}, platform.replies)
}

func TestRunCycle_MentionWithCommandDispatches(t *testing.T) {
	state := &memState{}
	platform := &fakePlatform{
		inbox: []domain.Message{{
			ID:         "t1_mention",
			Body:       "!blacklist:newsub",
			Author:     "mod",
			Community:  "newsub",
			WasComment: true,
		}},
		communities: map[string]domain.Community{"newsub": {DisplayName: "newsub"}},
		moderatedBy: map[string][]domain.Community{"mod": {{DisplayName: "newsub"}}},
	}
	svc := newService(state, platform, false)

	require.NoError(t, svc.RunCycle(context.Background()))

	assert.Equal(t, []string{"newsub"}, state.blacklisted)
	assert.Empty(t, state.whitelisted, "a command mention must not auto-enroll")
	require.Len(t, platform.replies, 1)
	assert.Equal(t, "t1_mention", platform.replies[0])
}

func TestRunCycle_ItemFailureDoesNotAbortCycle(t *testing.T) {
	state := &memState{}
	platform := &fakePlatform{
		inbox: []domain.Message{
			// No author: dispatch fails for this item.
			{ID: "t4_bad", Subject: "!ignoreme"},
			{ID: "t4_good", Subject: "!ignoreme", Author: "bob"},
		},
	}
	svc := newService(state, platform, false)

	require.NoError(t, svc.RunCycle(context.Background()))

	// The second message was still processed and state flushed.
	assert.Equal(t, []string{"bob"}, state.users)
	assert.Equal(t, 1, state.flushed)
}

func TestRunCycle_ScansWhitelistedCommunities(t *testing.T) {
	state := &memState{whitelisted: []string{"subone", "subtwo"}}
	platform := &fakePlatform{
		submissions: []domain.ContentItem{{ID: "t3_a", Title: "st. patty rules"}},
		comments:    []domain.ContentItem{{ID: "t1_b", Body: "st patty!"}},
	}
	svc := newService(state, platform, false)

	require.NoError(t, svc.RunCycle(context.Background()))

	assert.Equal(t, []string{"subone+subtwo"}, platform.subSpecs)
	assert.ElementsMatch(t, []string{"t3_a", "t1_b"}, platform.replies)
	assert.ElementsMatch(t, []string{"t3_a", "t1_b"}, state.responded)
}

func TestRunCycle_InboxFailureStillScansAndFlushes(t *testing.T) {
	state := &memState{whitelisted: []string{"subone"}}
	platform := &fakePlatform{
		inboxErr:    errors.New("gateway timeout"),
		submissions: []domain.ContentItem{{ID: "t3_a", Title: "st patty"}},
	}
	svc := newService(state, platform, false)

	require.NoError(t, svc.RunCycle(context.Background()))

	assert.Equal(t, []string{"t3_a"}, platform.replies)
	assert.Equal(t, 1, state.flushed)
}
