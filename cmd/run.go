package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/krau/ocw-saver/cmd/progress"
	"github.com/krau/ocw-saver/common/utils/netutil"
	"github.com/krau/ocw-saver/config"
	"github.com/krau/ocw-saver/core/persist"
	"github.com/krau/ocw-saver/core/tasks/coursetree"
	"github.com/krau/ocw-saver/database"
	"github.com/krau/ocw-saver/pkg/report"
	"github.com/krau/ocw-saver/pkg/scrape"
	"github.com/krau/ocw-saver/storage"
)

func registerRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("url", "u", "", "single listing url, its PDFs are saved straight into --dest")
	flags.StringP("file", "f", "", "file with one listing url per line, saved as a course tree")
	flags.String("report", "", "write the run report as YAML to this file")
	flags.Bool("no-progress", false, "disable the progress bar")
	cmd.MarkFlagsMutuallyExclusive("url", "file")
}

func Run(cmd *cobra.Command, args []string) error {
	listingURL, _ := cmd.Flags().GetString("url")
	listFile, _ := cmd.Flags().GetString("file")
	reportPath, _ := cmd.Flags().GetString("report")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	if listingURL != "" && len(args) > 0 {
		return fmt.Errorf("--url does not take listing url arguments")
	}
	urls := args
	if listFile != "" {
		fromFile, err := coursetree.ReadListingFile(listFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if listingURL == "" && len(urls) == 0 {
		return cmd.Help()
	}

	ctx := cmd.Context()
	logger := log.FromContext(ctx)
	cfg := config.C()

	httpClient, err := netutil.NewHTTPClient(time.Duration(cfg.Timeout)*time.Second, cfg.Proxy)
	if err != nil {
		return err
	}
	client := scrape.NewClient(httpClient,
		scrape.WithUserAgent(cfg.UserAgent),
		scrape.WithRetry(cfg.Retry, time.Duration(cfg.RetryInterval)*time.Millisecond),
	)
	match, err := scrape.NewPredicate(cfg.MatchKind, cfg.Flag)
	if err != nil {
		return err
	}

	stor, dest, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("Saving into", "storage", stor.Name(), "dest", stor.JoinStoragePath(dest))

	persistOpts := []persist.Option{persist.WithMultiAsset(cfg.MultiAsset)}
	if !config.HistoryDisabled(cmd) {
		if err := database.Init(ctx, cfg.DB.Path); err != nil {
			return err
		}
		defer database.Close()
		persistOpts = append(persistOpts, persist.WithHistory(recordDownload(stor.Name())))
	}

	opts := coursetree.Options{
		Workers:     cfg.Workers,
		Threads:     cfg.Threads,
		FailFast:    cfg.FailFast,
		UniqueLinks: cfg.UniqueLinks,
	}
	if !noProgress && progress.Enabled() {
		opts.Progress = progress.New()
	}
	o, err := coursetree.New(scrape.NewResolver(client), stor, match, opts, persistOpts...)
	if err != nil {
		return err
	}

	var rep *report.Report
	if listingURL != "" {
		rep, err = o.RunListing(ctx, listingURL, dest)
	} else {
		rep, err = o.Run(ctx, urls, dest)
	}
	if reportPath != "" {
		if werr := writeReport(rep, reportPath); werr != nil {
			logger.Error("Failed to write report", "path", reportPath, "err", werr)
		} else {
			logger.Info("Report written", "path", reportPath)
		}
	}
	if err != nil {
		return err
	}
	if failed := rep.Totals().Failures; failed > 0 {
		for _, l := range rep.Listings {
			for _, f := range l.Failures {
				logger.Warn("Failed", "kind", f.Kind, "url", f.URL, "err", f.Error)
			}
		}
		return fmt.Errorf("%d failures", failed)
	}
	return nil
}

// openStorage returns the storage to save into and the destination directory inside it.
// Without a named storage the destination directory itself is the storage root.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, string, error) {
	if cfg.Storage != "" {
		stor, err := storage.GetStorageByName(ctx, cfg.Storage)
		if err != nil {
			return nil, "", err
		}
		return stor, cfg.Dest, nil
	}
	dest := cfg.Dest
	if dest == "" {
		var err error
		if dest, err = config.DefaultDest(); err != nil {
			return nil, "", err
		}
	}
	stor, err := storage.NewLocal(ctx, dest)
	return stor, "", err
}

func recordDownload(storageName string) persist.HistoryFunc {
	return func(ctx context.Context, rec persist.Record) error {
		return database.CreateDownload(ctx, &database.Download{
			Resource: rec.Resource,
			Source:   rec.Source,
			Storage:  storageName,
			Path:     rec.Path,
			Bytes:    rec.Bytes,
			MimeType: rec.MimeType,
		})
	}
}

func writeReport(rep *report.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return rep.WriteYAML(f)
}
