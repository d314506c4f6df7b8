package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/itspaddysday/paddybot/internal/biz/domain"
	"github.com/itspaddysday/paddybot/internal/biz/repo"
	"github.com/itspaddysday/paddybot/internal/conf"
)

// ErrNoAuthor is returned when a message carries no author, which makes
// authorization impossible. The orchestrator logs and skips the item.
var ErrNoAuthor = errors.New("message has no author")

// DispatchUsecase maps a parsed command to its handler. Every inbound
// command yields exactly one response string; failure paths degrade to an
// informative template, never an error visible to the sender.
type DispatchUsecase struct {
	state     repo.StateRepo
	platform  repo.PlatformRepo
	responses *conf.Responses
	log       *zap.SugaredLogger
}

// NewDispatchUsecase creates a new dispatch usecase
func NewDispatchUsecase(
	state repo.StateRepo,
	platform repo.PlatformRepo,
	responses *conf.Responses,
	log *zap.SugaredLogger,
) *DispatchUsecase {
	return &DispatchUsecase{
		state:     state,
		platform:  platform,
		responses: responses,
		log:       log,
	}
}

// HandleCommand parses text from a message and performs the requested
// action, returning the response to send back.
func (uc *DispatchUsecase) HandleCommand(ctx context.Context, msg domain.Message, text string) (string, error) {
	cmd, err := domain.ParseCommand(text)
	if err != nil {
		// Malformed grammar degrades to the invalid-command template.
		uc.log.Debugw("command parse failed", "message_id", msg.ID, "error", err)
		return uc.responses.InvalidCommand, nil
	}

	switch cmd.Action {
	case domain.ActionNone, domain.ActionUnknown:
		return uc.responses.InvalidCommand, nil

	case domain.ActionBlacklist, domain.ActionWhitelist:
		return uc.manageMonitoredCommunity(ctx, msg, cmd)

	case domain.ActionSuggestion:
		// Persisting the suggestion for review is a future extension.
		return uc.responses.Suggestion, nil

	case domain.ActionIgnoreMe:
		// Self-service opt-out, no moderator check.
		if msg.Author == "" {
			return "", ErrNoAuthor
		}
		if err := uc.state.BlacklistAuthor(ctx, msg.Author); err != nil {
			return "", fmt.Errorf("blacklist author: %w", err)
		}
		return uc.responses.BlacklistUser, nil

	default:
		return uc.responses.InvalidCommand, nil
	}
}

// manageMonitoredCommunity handles the blacklist and whitelist actions,
// which share target resolution and the moderator check.
func (uc *DispatchUsecase) manageMonitoredCommunity(ctx context.Context, msg domain.Message, cmd domain.Command) (string, error) {
	if msg.Author == "" {
		return "", ErrNoAuthor
	}

	community := uc.resolveTarget(ctx, cmd.TargetName)
	if community == nil {
		return conf.Render(uc.responses.InvalidSubreddit, cmd.TargetName), nil
	}

	if !uc.isAuthorModerator(ctx, msg.Author, community.DisplayName) {
		return conf.Render(uc.responses.Unauthorised, community.DisplayName), nil
	}

	switch cmd.Action {
	case domain.ActionBlacklist:
		if err := uc.state.BlacklistCommunity(ctx, community.DisplayName); err != nil {
			return "", fmt.Errorf("blacklist community: %w", err)
		}
		return conf.Render(uc.responses.BlacklistSub, community.DisplayName), nil

	case domain.ActionWhitelist:
		if err := uc.state.WhitelistCommunity(ctx, community.DisplayName); err != nil {
			return "", fmt.Errorf("whitelist community: %w", err)
		}
		return conf.Render(uc.responses.WhitelistSub, community.DisplayName), nil

	default:
		return uc.responses.InvalidCommand, nil
	}
}

// resolveTarget turns a raw target name into a resolved community, or nil
// when the name is absent, unknown or ambiguous. Lookup errors also yield
// nil: the sender gets the invalid-subreddit template and can retry.
func (uc *DispatchUsecase) resolveTarget(ctx context.Context, name string) *domain.Community {
	if name == "" {
		return nil
	}
	community, err := uc.platform.FindExactCommunity(ctx, name)
	if err != nil {
		uc.log.Warnw("community lookup failed", "name", name, "error", err)
		return nil
	}
	return community
}

// isAuthorModerator reports whether author moderates the community. A
// lookup failure is treated as not-a-moderator, not a crash.
func (uc *DispatchUsecase) isAuthorModerator(ctx context.Context, author, community string) bool {
	moderated, err := uc.platform.ListModeratedCommunities(ctx, author)
	if err != nil {
		uc.log.Warnw("moderated-communities lookup failed", "author", author, "error", err)
		return false
	}
	for _, c := range moderated {
		if c.DisplayName == community {
			return true
		}
	}
	return false
}
