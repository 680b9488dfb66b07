package main

import (
	"fmt"
	"log/slog"
	"os"

	"pdf-insight/cmd"
	"pdf-insight/internal/config"
	"pdf-insight/internal/document_parsing"
	"pdf-insight/internal/ingest"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "pdfchat",
	Short: "Ask questions about PDF files from the command line",
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		return cmd.LoadEnvFromPath(envFile)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to load env from")
	rootCmd.AddCommand(summarizeCmd, askCmd)
}

// ingestPaths loads local files the same way uploads are loaded. Rejections
// and read failures are reported on stderr.
func ingestPaths(c *cobra.Command, cfg config.Config, paths []string) ingest.Result {
	files := make([]ingest.File, 0, len(paths))
	for _, p := range paths {
		files = append(files, ingest.FromPath(p))
	}

	ingestor := ingest.NewIngestor(document_parsing.PDFToMD,
		ingest.WithWorkers(cfg.IngestWorkers),
		ingest.WithMaxBytes(cfg.MaxUploadBytes),
	)
	result := ingestor.Ingest(c.Context(), files)

	for _, notice := range result.Notices() {
		fmt.Fprintf(c.ErrOrStderr(), "%s: %s\n", notice.Title, notice.Description)
	}
	return result
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
