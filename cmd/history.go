package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/krau/ocw-saver/config"
	"github.com/krau/ocw-saver/database"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the most recent downloads",
	Args:  cobra.NoArgs,
	RunE:  History,
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of downloads to print")
	historyCmd.Flags().StringP("resource", "r", "", "only print downloads of this resource page url")
}

func History(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	resource, err := cmd.Flags().GetString("resource")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := database.Init(ctx, config.C().DB.Path); err != nil {
		return err
	}
	defer database.Close()

	var downloads []database.Download
	if resource != "" {
		downloads, err = database.GetDownloadsByResource(ctx, resource)
	} else {
		downloads, err = database.GetRecentDownloads(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	total, err := database.CountDownloads(ctx)
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}
	renderHistory(cmd.OutOrStdout(), downloads, total)
	return nil
}

func renderHistory(w io.Writer, downloads []database.Download, total int64) {
	if len(downloads) == 0 {
		fmt.Fprintln(w, "No downloads recorded yet")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("TIME", "STORAGE", "SIZE", "PATH", "SOURCE")
	for _, d := range downloads {
		t.Row(humanize.Time(d.CreatedAt), d.Storage, humanize.Bytes(uint64(d.Bytes)), d.Path, d.Source)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Showing %d of %d downloads\n", len(downloads), total)
}
