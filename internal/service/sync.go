package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/itspaddysday/paddybot/internal/biz/domain"
	"github.com/itspaddysday/paddybot/internal/biz/repo"
	"github.com/itspaddysday/paddybot/internal/biz/usecase"
	"github.com/itspaddysday/paddybot/internal/conf"
)

// SyncService sequences one bot cycle: drain the unread inbox, then scan
// every whitelisted community's new posts and comments. A failure on one
// item is logged and skipped; it never aborts the rest of the cycle.
type SyncService struct {
	dispatchUC *usecase.DispatchUsecase
	scanUC     *usecase.ScanUsecase
	state      repo.StateRepo
	platform   repo.PlatformRepo
	responses  *conf.Responses

	postsLimit    int
	commentsLimit int
	dryRun        bool

	log *zap.SugaredLogger
}

// NewSyncService creates a new sync service
func NewSyncService(
	dispatchUC *usecase.DispatchUsecase,
	scanUC *usecase.ScanUsecase,
	state repo.StateRepo,
	platform repo.PlatformRepo,
	responses *conf.Responses,
	cfg *conf.Config,
	log *zap.SugaredLogger,
) *SyncService {
	return &SyncService{
		dispatchUC:    dispatchUC,
		scanUC:        scanUC,
		state:         state,
		platform:      platform,
		responses:     responses,
		postsLimit:    cfg.PostsLimit,
		commentsLimit: cfg.CommentsLimit,
		dryRun:        cfg.DryRun,
		log:           log,
	}
}

// RunCycle processes the inbox and scans the whitelisted communities once.
// State is flushed at the end even when items failed along the way.
func (s *SyncService) RunCycle(ctx context.Context) error {
	s.processUnreadMessages(ctx)
	s.scanWhitelisted(ctx)

	if err := s.state.Flush(); err != nil {
		return err
	}
	return nil
}

// Run loops RunCycle until the context is cancelled.
func (s *SyncService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.log.Infow("sync cycle starting", "dry_run", s.dryRun)
		if err := s.RunCycle(ctx); err != nil {
			s.log.Errorw("sync cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *SyncService) processUnreadMessages(ctx context.Context) {
	s.log.Info("processing unread messages")

	messages, err := s.platform.ListUnreadInbox(ctx)
	if err != nil {
		s.log.Errorw("inbox fetch failed", "error", err)
		return
	}

	for _, msg := range messages {
		var err error
		if msg.IsMention() {
			err = s.processMention(ctx, msg)
		} else {
			err = s.processDirectMessage(ctx, msg)
		}
		if err != nil {
			s.log.Errorw("message processing failed",
				"message_id", msg.ID,
				"subject", msg.Subject,
				"error", err,
			)
		}
	}
}

// processMention handles an inbox item generated by a comment-context
// reference to the bot. A command in the body is dispatched; anything else
// is an auto-enrollment signal for the origin community, after which the
// parent item and its direct replies are scanned.
func (s *SyncService) processMention(ctx context.Context, msg domain.Message) error {
	cmd, parseErr := domain.ParseCommand(msg.Body)

	if parseErr != nil || cmd.Action != domain.ActionNone {
		response, err := s.dispatchUC.HandleCommand(ctx, msg, msg.CommandText())
		if err != nil {
			return err
		}
		s.log.Infow("mention command handled",
			"message_id", msg.ID,
			"community", msg.Community,
			"response", response,
		)
		if s.dryRun {
			return nil
		}
		return s.platform.Reply(ctx, msg.ID, response)
	}

	// No command: auto-enroll the origin community.
	if err := s.state.WhitelistCommunity(ctx, msg.Community); err != nil {
		return err
	}
	s.log.Infow("mention auto-whitelisted community",
		"message_id", msg.ID,
		"community", msg.Community,
	)

	if !s.dryRun {
		if err := s.state.RecordResponded(ctx, msg.ID); err != nil {
			return err
		}
	}

	parent, err := s.platform.ParentOf(ctx, msg)
	if err != nil {
		return err
	}
	if parent == nil {
		return nil
	}

	if err := s.scanUC.ProcessItem(ctx, *parent); err != nil {
		s.log.Errorw("parent scan failed", "item_id", parent.ID, "error", err)
	}

	replies, err := s.platform.RepliesOf(ctx, *parent)
	if err != nil {
		return err
	}
	for _, reply := range replies {
		if err := s.scanUC.ProcessItem(ctx, reply); err != nil {
			s.log.Errorw("reply scan failed", "item_id", reply.ID, "error", err)
		}
	}
	return nil
}

// processDirectMessage dispatches the command in the subject and answers the
// sender. Reply and mark-read are suppressed under dry-run.
func (s *SyncService) processDirectMessage(ctx context.Context, msg domain.Message) error {
	response, err := s.dispatchUC.HandleCommand(ctx, msg, msg.CommandText())
	if err != nil {
		return err
	}

	s.log.Infow("direct message handled",
		"message_id", msg.ID,
		"subject", msg.Subject,
		"response", response,
	)

	if s.dryRun {
		return nil
	}
	if err := s.platform.Reply(ctx, msg.ID, response); err != nil {
		return err
	}
	return s.platform.MarkRead(ctx, msg.ID)
}

// scanWhitelisted applies the scanner to the newest posts and comments of
// the combined whitelist target.
func (s *SyncService) scanWhitelisted(ctx context.Context) {
	names, err := s.state.ListWhitelistedCommunities(ctx)
	if err != nil {
		s.log.Errorw("whitelist fetch failed", "error", err)
		return
	}
	if len(names) == 0 {
		s.log.Info("no whitelisted communities, skipping scan")
		return
	}
	spec := strings.Join(names, "+")

	s.log.Infow("checking posts", "communities", spec, "limit", s.postsLimit)
	posts, err := s.platform.StreamSubmissions(ctx, spec, s.postsLimit)
	if err != nil {
		s.log.Errorw("submissions fetch failed", "communities", spec, "error", err)
	}
	for _, item := range posts {
		if err := s.scanUC.ProcessItem(ctx, item); err != nil {
			s.log.Errorw("post scan failed", "item_id", item.ID, "error", err)
		}
	}

	s.log.Infow("checking comments", "communities", spec, "limit", s.commentsLimit)
	comments, err := s.platform.StreamComments(ctx, spec, s.commentsLimit)
	if err != nil {
		s.log.Errorw("comments fetch failed", "communities", spec, "error", err)
	}
	for _, item := range comments {
		if err := s.scanUC.ProcessItem(ctx, item); err != nil {
			s.log.Errorw("comment scan failed", "item_id", item.ID, "error", err)
		}
	}
}
