package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/krau/ocw-saver/common/cache"
	"github.com/krau/ocw-saver/config"
	"github.com/krau/ocw-saver/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ocw-saver [listing-url...]",
	Short: "Save the PDF material of MIT OpenCourseWare courses",
	Long: `ocw-saver visits course section pages of MIT OpenCourseWare, follows every
resource link and saves the linked PDFs into a parent/course/section tree.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initAll,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			closeLog()
		}
	},
	RunE: Run,
}

var closeLog func() error

func init() {
	config.RegisterFlags(rootCmd)
	registerRunFlags(rootCmd)
	rootCmd.AddCommand(historyCmd, versionCmd)
}

func initAll(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := config.Init(ctx, config.GetConfigFile(cmd)); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.C()
	l, closeFn, err := logger.New(os.Stderr, cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	closeLog = closeFn
	log.SetDefault(l)
	cmd.SetContext(log.WithContext(ctx, l))
	return cache.Init(cfg.Cache.NumCounters, cfg.Cache.MaxCost, time.Duration(cfg.Cache.TTL)*time.Second)
}

func Execute(ctx context.Context) {
	ctx = log.WithContext(ctx, log.Default())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.FromContext(ctx).Error(err)
		os.Exit(1)
	}
}
