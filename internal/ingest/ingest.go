package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"pdf-insight/internal/store"
	"pdf-insight/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileRead        = errors.New("failed to read file")
)

// TextExtractor turns raw PDF bytes into prompt-ready text.
type TextExtractor func(contents []byte) (string, error)

type FileFailure struct {
	Name string
	Err  error
}

type Result struct {
	Documents []store.Document
	Rejected  []string
	Failures  []FileFailure
	// Total is the number of files submitted in the batch.
	Total int
}

type Ingestor struct {
	extract  TextExtractor
	workers  int
	maxBytes int64
}

type Option func(*Ingestor)

func WithWorkers(n int) Option {
	return func(i *Ingestor) { i.workers = n }
}

// WithMaxBytes rejects (as a read failure) files larger than n bytes. n <= 0
// disables the limit.
func WithMaxBytes(n int64) Option {
	return func(i *Ingestor) { i.maxBytes = n }
}

func NewIngestor(extract TextExtractor, opts ...Option) *Ingestor {
	i := &Ingestor{
		extract: extract,
		workers: 4,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

type readJob struct {
	index int
	file  File
}

// Ingest reads every PDF in the batch independently. Non-PDF files are
// rejected up front and a failing read never affects the other files.
func (i *Ingestor) Ingest(ctx context.Context, files []File) Result {
	res := Result{Total: len(files)}

	var jobs []readJob
	for idx, f := range files {
		if f.ContentType() != PDFMimeType {
			slog.Info("rejecting non-pdf upload", "name", f.Name(), "content_type", f.ContentType())
			res.Rejected = append(res.Rejected, f.Name())
			continue
		}
		jobs = append(jobs, readJob{index: idx, file: f})
	}

	if len(jobs) == 0 {
		return res
	}

	queue := make(chan readJob, len(jobs))
	for _, j := range jobs {
		queue <- j
	}
	close(queue)

	completed := make(chan utils.CompletedTask[readJob, store.Document], len(jobs))
	utils.RunInPool(func(j readJob) (store.Document, error) {
		return i.read(ctx, j.file)
	}, queue, completed, i.workers)

	type indexed struct {
		index int
		doc   store.Document
	}
	var docs []indexed
	var failures []readJob
	failureErrs := map[int]error{}

	for task := range completed {
		if task.Error != nil {
			slog.Error("error reading upload", "name", task.Input.file.Name(), "error", task.Error)
			failures = append(failures, task.Input)
			failureErrs[task.Input.index] = task.Error
			continue
		}
		docs = append(docs, indexed{index: task.Input.index, doc: task.Result})
	}

	slices.SortFunc(docs, func(a, b indexed) int { return a.index - b.index })
	slices.SortFunc(failures, func(a, b readJob) int { return a.index - b.index })

	for _, d := range docs {
		res.Documents = append(res.Documents, d.doc)
	}
	for _, f := range failures {
		res.Failures = append(res.Failures, FileFailure{Name: f.file.Name(), Err: failureErrs[f.index]})
	}

	return res
}

func (i *Ingestor) read(ctx context.Context, f File) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return store.Document{}, fmt.Errorf("%w %s: %w", ErrFileRead, f.Name(), err)
	}

	rc, err := f.Open()
	if err != nil {
		return store.Document{}, fmt.Errorf("%w %s: %w", ErrFileRead, f.Name(), err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if i.maxBytes > 0 {
		r = io.LimitReader(rc, i.maxBytes+1)
	}

	contents, err := io.ReadAll(r)
	if err != nil {
		return store.Document{}, fmt.Errorf("%w %s: %w", ErrFileRead, f.Name(), err)
	}
	if i.maxBytes > 0 && int64(len(contents)) > i.maxBytes {
		return store.Document{}, fmt.Errorf("%w %s: file exceeds %d bytes", ErrFileRead, f.Name(), i.maxBytes)
	}

	text := ""
	if i.extract != nil {
		text, err = i.extract(contents)
		if err != nil {
			slog.Warn("could not extract text from pdf, continuing without it", "name", f.Name(), "error", err)
			text = ""
		}
	}

	return store.Document{
		ID:      uuid.NewString(),
		Name:    f.Name(),
		Content: EncodeDataURI(PDFMimeType, contents),
		Text:    strings.TrimSpace(text),
	}, nil
}

func EncodeDataURI(mimeType string, contents []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(contents)
}

// DecodeDataURI is the inverse of EncodeDataURI for base64 data URIs.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data uri")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("data uri is not base64 encoded")
	}
	contents, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("error decoding data uri: %w", err)
	}
	return mimeType, contents, nil
}
