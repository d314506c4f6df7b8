package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/itspaddysday/paddybot/internal/biz/domain"
	"github.com/itspaddysday/paddybot/internal/biz/repo"
)

// ScanUsecase applies the misspelling matcher to content items and sends the
// correction reply at most once per item.
type ScanUsecase struct {
	state      repo.StateRepo
	platform   repo.PlatformRepo
	correction string
	dryRun     bool
	log        *zap.SugaredLogger
}

// NewScanUsecase creates a new scan usecase
func NewScanUsecase(
	state repo.StateRepo,
	platform repo.PlatformRepo,
	correction string,
	dryRun bool,
	log *zap.SugaredLogger,
) *ScanUsecase {
	return &ScanUsecase{
		state:      state,
		platform:   platform,
		correction: correction,
		dryRun:     dryRun,
		log:        log,
	}
}

// ProcessItem replies with the correction if the item matches and has not
// been responded to. Processing the same item twice never double-replies:
// the responded set is consulted first and only updated after a confirmed
// successful send.
func (uc *ScanUsecase) ProcessItem(ctx context.Context, item domain.ContentItem) error {
	uc.log.Debugw("scanning item",
		"id", item.ID,
		"community", item.Community,
		"created_at", item.CreatedAt,
		"permalink", item.Permalink,
	)

	responded, err := uc.state.IsResponded(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("responded lookup: %w", err)
	}
	if responded {
		return nil
	}

	if item.Author != "" {
		blacklisted, err := uc.state.IsAuthorBlacklisted(ctx, item.Author)
		if err != nil {
			return fmt.Errorf("author blacklist lookup: %w", err)
		}
		if blacklisted {
			return nil
		}
	}

	if !domain.ContainsMisspelling(item.SearchText()) {
		return nil
	}

	uc.log.Infow("match",
		"id", item.ID,
		"community", item.Community,
		"permalink", item.Permalink,
	)

	if uc.dryRun {
		return nil
	}

	if err := uc.platform.Reply(ctx, item.ID, uc.correction); err != nil {
		// Not recorded as responded: the next run retries the reply.
		return fmt.Errorf("send correction: %w", err)
	}
	if err := uc.state.RecordResponded(ctx, item.ID); err != nil {
		return fmt.Errorf("record responded: %w", err)
	}
	return nil
}
