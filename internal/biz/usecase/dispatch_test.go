package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itspaddysday/paddybot/internal/biz/domain"
	"github.com/itspaddysday/paddybot/internal/conf"
)

func newDispatch(state *mockStateRepo, platform *mockPlatformRepo) *DispatchUsecase {
	return NewDispatchUsecase(state, platform, conf.DefaultResponses(), zap.NewNop().Sugar())
}

func msgFrom(author string) domain.Message {
	return domain.Message{ID: "t4_msg1", Author: author, Subject: "hello"}
}

func TestHandleCommand_WhitelistByModerator(t *testing.T) {
	state := &mockStateRepo{}
	platform := &mockPlatformRepo{
		communities: map[string]domain.Community{"testsub": {DisplayName: "testsub"}},
		moderatedBy: map[string][]domain.Community{"alice": {{DisplayName: "testsub"}}},
	}
	uc := newDispatch(state, platform)

	response, err := uc.HandleCommand(context.Background(), msgFrom("alice"), "!whitelist:testsub")
	require.NoError(t, err)

	assert.Equal(t, conf.Render(conf.DefaultResponses().WhitelistSub, "testsub"), response)
	assert.Equal(t, []string{"testsub"}, state.whitelistedSubs)
}

func TestHandleCommand_BlacklistUnauthorised(t *testing.T) {
	state := &mockStateRepo{}
	platform := &mockPlatformRepo{
		communities: map[string]domain.Community{"testsub": {DisplayName: "testsub"}},
		moderatedBy: map[string][]domain.Community{"alice": {{DisplayName: "othersub"}}},
	}
	uc := newDispatch(state, platform)

	response, err := uc.HandleCommand(context.Background(), msgFrom("alice"), "!blacklist:testsub")
	require.NoError(t, err)

	assert.Equal(t, conf.Render(conf.DefaultResponses().Unauthorised, "testsub"), response)
	assert.Empty(t, state.blacklistedSubs)
}

func TestHandleCommand_BlacklistByModerator(t *testing.T) {
	state := &mockStateRepo{}
	platform := &mockPlatformRepo{
		communities: map[string]domain.Community{"testsub": {DisplayName: "testsub"}},
		moderatedBy: map[string][]domain.Community{"alice": {{DisplayName: "testsub"}}},
	}
	uc := newDispatch(state, platform)

	response, err := uc.HandleCommand(context.Background(), msgFrom("alice"), "!blacklist:testsub")
	require.NoError(t, err)

	assert.Equal(t, conf.Render(conf.DefaultResponses().BlacklistSub, "testsub"), response)
	assert.Equal(t, []string{"testsub"}, state.blacklistedSubs)
}

func TestHandleCommand_UnknownCommunity(t *testing.T) {
	state := &mockStateRepo{}
	platform := &mockPlatformRepo{communities: map[string]domain.Community{}}
	uc := newDispatch(state, platform)

	response, err := uc.HandleCommand(context.Background(), msgFrom("alice"), "!whitelist:nosuchsub")
	require.NoError(t, err)

	// The raw target text is substituted into the template.
	assert.Equal(t, conf.Render(conf.DefaultResponses().InvalidSubreddit, "nosuchsub"), response)
}

func TestHandleCommand_MissingTarget(t *testing.T) {
	state := &mockStateRepo{}
	platform := &mockPlatformRepo{}
	uc := newDispatch(state, platform)

	response, err := uc.HandleCommand(context.Background(), msgFrom("alice"), "!whitelist")
	require.NoError(t, err)

	assert.Equal(t, conf.Render(conf.DefaultResponses().InvalidSubreddit, ""), response)
}

func TestHandleCommand_ModeratorLookupFailureIsUnauthorised(t *testing.T) {
	state := &mockStateRepo{}
	platform := &mockPlatformRepo{
		communities:  map[string]domain.Community{"testsub": {DisplayName: "testsub"}},
		moderatedErr: errLookupDown,
	}
	uc := newDispatch(state, platform)

	response, err := uc.HandleCommand(context.Background(), msgFrom("alice"), "!blacklist:testsub")
	require.NoError(t, err)

	assert.Equal(t, conf.Render(conf.DefaultResponses().Unauthorised, "testsub"), response)
	assert.Empty(t, state.blacklistedSubs)
}

func TestHandleCommand_IgnoreMe(t *testing.T) {
	state := &mockStateRepo{}
	uc := newDispatch(state, &mockPlatformRepo{})

	response, err := uc.HandleCommand(context.Background(), msgFrom("bob"), "!ignoreme")
	require.NoError(t, err)

	// Self-service opt-out needs no moderator check.
	assert.Equal(t, conf.DefaultResponses().BlacklistUser, response)
	assert.Equal(t, []string{"bob"}, state.blacklistedUsers)
}

func TestHandleCommand_Suggestion(t *testing.T) {
	uc := newDispatch(&mockStateRepo{}, &mockPlatformRepo{})

	response, err := uc.HandleCommand(context.Background(), msgFrom("bob"), "!suggestion make it rhyme")
	require.NoError(t, err)

	assert.Equal(t, conf.DefaultResponses().Suggestion, response)
}

func TestHandleCommand_NoCommand(t *testing.T) {
	uc := newDispatch(&mockStateRepo{}, &mockPlatformRepo{})

	response, err := uc.HandleCommand(context.Background(), msgFrom("bob"), "just saying hi")
	require.NoError(t, err)

	assert.Equal(t, conf.DefaultResponses().InvalidCommand, response)
}

func TestHandleCommand_UnknownVerb(t *testing.T) {
	uc := newDispatch(&mockStateRepo{}, &mockPlatformRepo{})

	response, err := uc.HandleCommand(context.Background(), msgFrom("bob"), "!frobnicate:testsub")
	require.NoError(t, err)

	assert.Equal(t, conf.DefaultResponses().InvalidCommand, response)
}

func TestHandleCommand_MalformedTokenDegrades(t *testing.T) {
	uc := newDispatch(&mockStateRepo{}, &mockPlatformRepo{})

	response, err := uc.HandleCommand(context.Background(), msgFrom("bob"), "!blacklist:a:b")
	require.NoError(t, err)

	// Grammar violations degrade to a response, never an error.
	assert.Equal(t, conf.DefaultResponses().InvalidCommand, response)
}

func TestHandleCommand_NoAuthorPropagates(t *testing.T) {
	uc := newDispatch(&mockStateRepo{}, &mockPlatformRepo{})

	_, err := uc.HandleCommand(context.Background(), msgFrom(""), "!ignoreme")
	assert.ErrorIs(t, err, ErrNoAuthor)
}
