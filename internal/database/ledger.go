package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pdf-insight/internal/answering"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ledger persists one row per answering call. It implements answering.Recorder.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

type callMetadata struct {
	Error string `json:"error,omitempty"`
}

func (l *Ledger) RecordCall(ctx context.Context, call answering.Call) error {
	metadata, err := json.Marshal(callMetadata{Error: call.Error})
	if err != nil {
		return fmt.Errorf("error encoding call metadata: %w", err)
	}

	row := AnsweringCall{
		Id:               uuid.New(),
		Operation:        call.Operation,
		DocumentId:       call.DocumentID,
		Outcome:          call.Outcome,
		Attempts:         call.Attempts,
		LatencyMs:        call.Latency.Milliseconds(),
		PromptTokens:     call.Usage.PromptTokens,
		CompletionTokens: call.Usage.CompletionTokens,
		TotalTokens:      call.Usage.TotalTokens,
		Metadata:         datatypes.JSON(metadata),
		CreationTime:     time.Now().UTC(),
	}

	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		slog.Error("error saving answering call", "operation", call.Operation, "document_id", call.DocumentID, "error", err)
		return fmt.Errorf("error saving answering call: %w", err)
	}
	return nil
}

type UsageSummary struct {
	Operation        string
	Outcome          string
	Calls            int64
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	AvgLatencyMs     float64
}

func (l *Ledger) Summary(ctx context.Context) ([]UsageSummary, error) {
	var rows []UsageSummary
	if err := l.db.WithContext(ctx).
		Model(&AnsweringCall{}).
		Select(`operation, outcome, COUNT(*) AS calls,
			COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS completion_tokens,
			COALESCE(SUM(total_tokens), 0) AS total_tokens,
			COALESCE(AVG(latency_ms), 0) AS avg_latency_ms`).
		Group("operation, outcome").
		Order("operation, outcome").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error summarizing answering calls: %w", err)
	}
	return rows, nil
}

// RecentCalls returns the newest calls first, optionally for one document.
func (l *Ledger) RecentCalls(ctx context.Context, documentID string, limit int) ([]AnsweringCall, error) {
	query := l.db.WithContext(ctx).Order("creation_time DESC")
	if documentID != "" {
		query = query.Where("document_id = ?", documentID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var calls []AnsweringCall
	if err := query.Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("error listing answering calls: %w", err)
	}
	return calls, nil
}
