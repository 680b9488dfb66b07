package api

import (
	"errors"
	"log/slog"
	"net/http"

	"pdf-insight/internal/ingest"
	"pdf-insight/internal/store"
	"pdf-insight/pkg/api"
)

func (s *BackendService) lookupDocument(r *http.Request) (store.Document, error) {
	id, err := URLParamUUID(r, "document_id")
	if err != nil {
		return store.Document{}, err
	}

	doc, err := s.store.Document(id.String())
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return store.Document{}, CodedErrorf(http.StatusNotFound, "document %s not found", id)
		}
		return store.Document{}, CodedError(http.StatusInternalServerError, err)
	}
	return doc, nil
}

func (s *BackendService) ListDocuments(r *http.Request) (any, error) {
	snap := s.store.Snapshot()

	docs, err := s.convertDocumentSummaries(snap.Documents)
	if err != nil {
		return nil, err
	}

	return api.ListDocumentsResponse{Documents: docs, ActiveId: activeIdPtr(snap.ActiveID)}, nil
}

func (s *BackendService) UploadDocuments(r *http.Request) (any, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		slog.Error("error parsing multipart form", "error", err)
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse multipart form")
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("error removing multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File["files"]
	files := make([]ingest.File, 0, len(headers))
	for _, header := range headers {
		files = append(files, ingest.FromMultipart(header))
	}

	result := s.ingestor.Ingest(r.Context(), files)

	activeId := s.store.ActiveID()
	if len(result.Documents) > 0 {
		var err error
		activeId, err = s.store.AddDocuments(result.Documents)
		if err != nil {
			return nil, CodedError(http.StatusInternalServerError, err)
		}
	}

	docs, err := s.convertDocumentSummaries(result.Documents)
	if err != nil {
		return nil, err
	}

	slog.Info("processed upload", "files", result.Total, "documents", len(result.Documents), "rejected", len(result.Rejected), "failed", len(result.Failures))

	return api.UploadDocumentsResponse{
		Documents: docs,
		Rejected:  append([]string{}, result.Rejected...),
		Failures:  convertFailures(result.Failures),
		Notices:   convertNotices(result.Notices()),
		ActiveId:  activeIdPtr(activeId),
	}, nil
}

func (s *BackendService) GetDocument(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.GetDocumentParams](r)
	if err != nil {
		return nil, err
	}

	doc, err := s.lookupDocument(r)
	if err != nil {
		return nil, err
	}

	id, err := documentUUID(doc.ID)
	if err != nil {
		return nil, err
	}

	res := api.Document{
		Id:            id,
		Name:          doc.Name,
		ChatHistory:   convertMessages(doc.ChatHistory, false),
		AwaitingReply: s.chat.AwaitingReply(doc.ID),
		Active:        s.store.ActiveID() == doc.ID,
	}
	if params.IncludeContent {
		res.Content = doc.Content
	}
	return res, nil
}

func (s *BackendService) DeleteDocument(r *http.Request) (any, error) {
	doc, err := s.lookupDocument(r)
	if err != nil {
		return nil, err
	}

	active, err := s.store.RemoveDocument(doc.ID)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "document %s not found", doc.ID)
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	slog.Info("removed document", "document_id", doc.ID, "active_id", active)
	return api.ActiveDocumentResponse{ActiveId: activeIdPtr(active)}, nil
}

func (s *BackendService) ActivateDocument(r *http.Request) (any, error) {
	id, err := URLParamUUID(r, "document_id")
	if err != nil {
		return nil, err
	}

	if err := s.store.SetActive(id.String()); err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "document %s not found", id)
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return api.ActiveDocumentResponse{ActiveId: activeIdPtr(s.store.ActiveID())}, nil
}
