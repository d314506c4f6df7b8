package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itspaddysday/paddybot/internal/biz/usecase"
	"github.com/itspaddysday/paddybot/internal/conf"
	"github.com/itspaddysday/paddybot/internal/data"
	"github.com/itspaddysday/paddybot/internal/infra/reddit"
	"github.com/itspaddysday/paddybot/internal/service"
)

var (
	flagDryRun   bool
	flagOnce     bool
	flagInterval int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "paddybot",
		Short:         "Corrects 'St. Patty' to 'St. Paddy' across monitored communities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run sync cycles: process the inbox, then scan whitelisted communities",
		RunE:  runBot,
	}
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "log matches without replying or mutating state")
	runCmd.Flags().BoolVar(&flagOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().IntVar(&flagInterval, "interval", 0, "minutes between cycles (overrides SYNC_INTERVAL_MINUTES)")

	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the persisted subscription state",
	}
	stateCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the whitelisted communities",
		RunE:  showState,
	})

	rootCmd.AddCommand(runCmd, stateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()
	if flagDryRun {
		cfg.DryRun = true
	}
	if flagInterval > 0 {
		cfg.SyncIntervalMinutes = flagInterval
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Sugar()

	responses, err := conf.LoadResponses(cfg.ResponsesPath, cfg.CorrectionPath)
	if err != nil {
		return fmt.Errorf("load responses: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := data.NewStateRepo(ctx, cfg.State)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	// Best-effort persistence even when the cycle failed.
	defer func() {
		if err := state.Close(); err != nil {
			log.Errorw("state store close failed", "error", err)
		}
	}()

	client := reddit.NewClient(reddit.Credentials{
		Username:     cfg.Reddit.Username,
		Password:     cfg.Reddit.Password,
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
	}, cfg.RatelimitSeconds)
	platform := data.NewRedditRepo(client)

	dispatchUC := usecase.NewDispatchUsecase(state, platform, responses, log)
	scanUC := usecase.NewScanUsecase(state, platform, responses.Correction, cfg.DryRun, log)
	syncSvc := service.NewSyncService(dispatchUC, scanUC, state, platform, responses, cfg, log)

	log.Infow("paddybot starting",
		"state_backend", cfg.State.Backend,
		"dry_run", cfg.DryRun,
		"posts_limit", cfg.PostsLimit,
		"comments_limit", cfg.CommentsLimit,
	)

	if flagOnce {
		return syncSvc.RunCycle(ctx)
	}

	err = syncSvc.Run(ctx, time.Duration(cfg.SyncIntervalMinutes)*time.Minute)
	if err == context.Canceled {
		log.Info("shutting down")
		return nil
	}
	return err
}

func showState(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	cfg := conf.LoadFromEnv()

	ctx := context.Background()
	state, err := data.NewStateRepo(ctx, cfg.State)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer state.Close()

	names, err := state.ListWhitelistedCommunities(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("whitelisted communities (%d):\n", len(names))
	for _, name := range names {
		fmt.Println("  " + name)
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
