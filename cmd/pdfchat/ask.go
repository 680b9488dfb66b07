package main

import (
	"errors"
	"fmt"
	"strings"

	"pdf-insight/cmd"
	"pdf-insight/internal/answering"
	"pdf-insight/internal/config"
	"pdf-insight/internal/store"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <file.pdf> <question>...",
	Short: "Answer one question about a PDF",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAsk,
}

func runAsk(c *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args[1:], " "))
	if question == "" {
		return answering.ErrEmptyQuestion
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	result := ingestPaths(c, cfg, args[:1])
	if len(result.Documents) == 0 {
		return errors.New("no document to ask about")
	}
	doc := result.Documents[0]

	client, err := cmd.NewAnsweringClient(cfg, nil)
	if err != nil {
		return err
	}

	history := []store.Message{{Role: store.RoleUser, Content: question}}
	answer, err := client.Answer(c.Context(), answering.AnswerRequest{
		DocumentID:      doc.ID,
		Question:        question,
		DocumentContent: doc.PromptContent(),
		ChatHistory:     answering.SerializeTranscript(history),
	})
	if err != nil {
		fmt.Fprintln(c.OutOrStdout(), answering.FallbackMessage(err))
		return err
	}

	fmt.Fprintln(c.OutOrStdout(), answer)
	return nil
}
