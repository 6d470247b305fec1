package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/teemow/toodledo/internal/apierror"
	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/logging"
)

// Request size limits imposed by the Toodledo API.
const (
	ReadLimit  = 1000 // records per page on reads
	WriteLimit = 50   // records per call on add, edit and delete
)

// PostFunc sends one chunk and returns the decoded response body.
type PostFunc func(ctx context.Context, form url.Values) (json.RawMessage, error)

// FetchFunc requests one page of num records starting at offset start.
type FetchFunc func(ctx context.Context, start, num int) (json.RawMessage, error)

// ChunkError reports the write chunk that stopped a batch. Chunks before it were
// applied by the server and are not rolled back.
type ChunkError struct {
	Chunk    int // 1-based index of the failed chunk
	Chunks   int // total number of chunks in the batch
	Applied  int // records the server accepted, including Accepted
	Accepted int // records accepted inside the failed chunk
	Err      error
}

// Error implements the error interface
func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d of %d failed, %d records already applied: %v", e.Chunk, e.Chunks, e.Applied, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Applied returns the number of records applied before err stopped a batch, or
// 0 if err did not come from a batch.
func Applied(err error) int {
	var chunkErr *ChunkError
	if errors.As(err, &chunkErr) {
		return chunkErr.Applied
	}
	return 0
}

// Executor issues chunked writes and paginated reads one request at a time.
type Executor struct {
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for per chunk debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records every chunk and page.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(e *Executor) {
		e.metrics = metrics
	}
}

// NewExecutor creates an Executor.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Chunks splits items into consecutive slices of at most size elements, in order.
func Chunks[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for lo := 0; lo < len(items); lo += size {
		hi := min(lo+size, len(items))
		chunks = append(chunks, items[lo:hi:hi])
	}
	return chunks
}

// Write sends items in chunks of at most limit, one request per chunk, and
// returns the records the server sent back for every chunk.
//
// An empty items slice issues no request. The first failing chunk stops the
// batch: Write returns the records of the chunks already applied together with
// a *ChunkError. When the failing chunk is rejected item by item, the items the
// server accepted are included in the records and in the applied count.
func Write[T any](ctx context.Context, e *Executor, op string, items []T, limit int, encode func(chunk []T) (url.Values, error), post PostFunc) ([]json.RawMessage, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		return nil, fmt.Errorf("invalid write limit %d", limit)
	}

	logger := logging.WithOperation(e.logger, op)
	chunks := Chunks(items, limit)

	var records []json.RawMessage
	applied := 0
	for i, chunk := range chunks {
		accepted := 0
		fail := func(err error) ([]json.RawMessage, error) {
			e.metrics.RecordBatchChunk(ctx, op, instrumentation.BatchKindWrite, instrumentation.StatusError, len(chunk))
			logger.Debug("chunk failed", logging.Chunk(i+1, len(chunks)), logging.Count(len(chunk)), logging.Err(err))
			return records, &ChunkError{Chunk: i + 1, Chunks: len(chunks), Applied: applied, Accepted: accepted, Err: err}
		}

		form, err := encode(chunk)
		if err != nil {
			return fail(fmt.Errorf("encode: %w", err))
		}

		body, err := post(ctx, form)
		if err != nil {
			return fail(err)
		}
		if err := apierror.Check(body); err != nil {
			// Items without an errorCode were still created or edited.
			items := acceptedItems(body)
			records = append(records, items...)
			accepted = len(items)
			applied += accepted
			return fail(err)
		}

		records = append(records, elements(body)...)
		applied += len(chunk)

		e.metrics.RecordBatchChunk(ctx, op, instrumentation.BatchKindWrite, instrumentation.StatusSuccess, len(chunk))
		logger.Debug("chunk applied", logging.Chunk(i+1, len(chunks)), logging.Count(len(chunk)))
	}

	return records, nil
}

// Paginate requests pages of limit records until a page comes back short, and
// returns all records with each page's leading count element removed.
func (e *Executor) Paginate(ctx context.Context, op string, limit int, fetch FetchFunc) ([]json.RawMessage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid page size %d", limit)
	}

	logger := logging.WithOperation(e.logger, op)

	var all []json.RawMessage
	for start := 0; ; start += limit {
		body, err := fetch(ctx, start, limit)
		if err == nil {
			err = apierror.Check(body)
		}
		if err != nil {
			e.metrics.RecordBatchChunk(ctx, op, instrumentation.BatchKindPage, instrumentation.StatusError, 0)
			return nil, fmt.Errorf("page at offset %d: %w", start, err)
		}

		var page []json.RawMessage
		if err := json.Unmarshal(body, &page); err != nil {
			e.metrics.RecordBatchChunk(ctx, op, instrumentation.BatchKindPage, instrumentation.StatusError, 0)
			return nil, fmt.Errorf("page at offset %d: expected a JSON array: %w", start, err)
		}

		// The first element is {"num":..,"total":..}, not a record.
		var records []json.RawMessage
		if len(page) > 0 {
			records = page[1:]
		}
		all = append(all, records...)

		e.metrics.RecordBatchChunk(ctx, op, instrumentation.BatchKindPage, instrumentation.StatusSuccess, len(records))
		logger.Debug("fetched page", slog.Int("start", start), logging.Count(len(records)))

		if len(records) < limit {
			return all, nil
		}
	}
}

// acceptedItems returns the members of an array body that carry no errorCode.
func acceptedItems(body json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil
	}
	var accepted []json.RawMessage
	for _, item := range items {
		if apierror.Check(item) == nil {
			accepted = append(accepted, item)
		}
	}
	return accepted
}

// elements returns the members of a JSON array body, or the body itself when it
// is not an array.
func elements(body json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err == nil {
		return items
	}
	if len(body) == 0 {
		return nil
	}
	return []json.RawMessage{body}
}
