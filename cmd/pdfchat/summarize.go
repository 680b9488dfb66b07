package main

import (
	"errors"
	"fmt"

	"pdf-insight/cmd"
	"pdf-insight/internal/answering"
	"pdf-insight/internal/config"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file.pdf>...",
	Short: "Print a summary of each PDF",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummarize,
}

func runSummarize(c *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	result := ingestPaths(c, cfg, args)
	if len(result.Documents) == 0 {
		return errors.New("no documents to summarize")
	}

	client, err := cmd.NewAnsweringClient(cfg, nil)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(result.Documents),
		progressbar.OptionSetDescription("summarizing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetWriter(c.ErrOrStderr()),
		progressbar.OptionClearOnFinish(),
	)

	summaries := make([]string, len(result.Documents))
	failed := make([]bool, len(result.Documents))

	g, ctx := errgroup.WithContext(c.Context())
	g.SetLimit(max(cfg.ChatWorkers, 1))
	for i, doc := range result.Documents {
		g.Go(func() error {
			defer bar.Add(1) //nolint:errcheck

			summary, err := client.Summarize(ctx, answering.SummarizeRequest{
				DocumentID:      doc.ID,
				DocumentContent: doc.PromptContent(),
			})
			if err != nil {
				summaries[i], failed[i] = answering.FallbackMessage(err), true
				return nil
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()

	anyFailed := false
	out := c.OutOrStdout()
	for i, doc := range result.Documents {
		fmt.Fprintf(out, "== %s ==\n%s\n\n", doc.Name, summaries[i])
		anyFailed = anyFailed || failed[i]
	}

	if anyFailed || len(result.Failures) > 0 {
		return errors.New("some documents could not be summarized")
	}
	return nil
}
