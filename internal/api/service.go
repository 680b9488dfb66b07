package api

import (
	"context"
	"net/http"

	"pdf-insight/internal/answering"
	"pdf-insight/internal/chat"
	"pdf-insight/internal/database"
	"pdf-insight/internal/ingest"
	"pdf-insight/internal/store"

	"github.com/go-chi/chi/v5"
)

const maxMultipartMemory = 32 << 20

// UsageReporter is satisfied by *database.Ledger.
type UsageReporter interface {
	Summary(ctx context.Context) ([]database.UsageSummary, error)
	RecentCalls(ctx context.Context, documentID string, limit int) ([]database.AnsweringCall, error)
}

type BackendService struct {
	store    *store.Store
	ingestor *ingest.Ingestor
	chat     *chat.Service
	prompts  *answering.Prompts
	usage    UsageReporter
}

// NewBackendService wires the handlers. usage may be nil, in which case
// /usage reports nothing.
func NewBackendService(ingestor *ingest.Ingestor, chatService *chat.Service, prompts *answering.Prompts, usage UsageReporter) *BackendService {
	return &BackendService{
		store:    chatService.Store(),
		ingestor: ingestor,
		chat:     chatService,
		prompts:  prompts,
		usage:    usage,
	}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListDocuments))
		r.Post("/", RestHandler(s.UploadDocuments))

		r.Route("/{document_id}", func(r chi.Router) {
			r.Get("/", RestHandler(s.GetDocument))
			r.Delete("/", RestHandler(s.DeleteDocument))
			r.Post("/activate", RestHandler(s.ActivateDocument))

			r.Get("/messages", RestHandler(s.GetMessages))
			r.Put("/messages", RestHandler(s.ReplaceMessages))
			r.Post("/messages", RestHandler(s.Ask))

			r.Post("/summary", RestHandler(s.Summarize))
		})
	})

	r.Get("/prompts", RestHandler(s.GetPrompts))
	r.Get("/usage", RestHandler(s.GetUsage))
	r.Get("/usage/calls", RestHandler(s.GetUsageCalls))
}
