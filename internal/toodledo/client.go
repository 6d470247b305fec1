package toodledo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/toodledo/internal/apierror"
	"github.com/teemow/toodledo/internal/batch"
	"github.com/teemow/toodledo/internal/codec"
	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/logging"
	"github.com/teemow/toodledo/internal/transport"
)

// ErrMissingID is returned when editing or deleting a record without an id.
var ErrMissingID = errors.New("record has no id")

// SessionProvider supplies authenticated sessions and renews their authorization.
type SessionProvider interface {
	Session(ctx context.Context) (transport.Transport, error)
	Reauthorize(ctx context.Context) error
}

// Client is the Toodledo API client. Calls are sequential; a Client must not
// be shared between goroutines that use the same token store.
type Client struct {
	sessions SessionProvider
	batch    *batch.Executor
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records batch chunks and pages.
func WithMetrics(metrics *instrumentation.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a client using sessions from the given provider.
func NewClient(sessions SessionProvider, opts ...ClientOption) *Client {
	c := &Client{
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.batch = batch.NewExecutor(batch.WithLogger(c.logger), batch.WithMetrics(c.metrics))
	return c
}

// needsReauthorization reports whether err means the session's authorization
// was rejected. Rate limiting is treated the same way.
func needsReauthorization(err error) bool {
	// A chunk the server processed item by item was sent with a valid token.
	var chunkErr *batch.ChunkError
	if errors.As(err, &chunkErr) && chunkErr.Accepted > 0 {
		return false
	}
	if apierror.IsAuthorization(err) || transport.IsUnauthorized(err) || transport.IsRateLimited(err) {
		return true
	}
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}

// call runs fn with a session. If fn fails for authorization reasons the
// provider reauthorizes and fn runs once more with a new session.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context, t transport.Transport) error) (err error) {
	ctx, span := instrumentation.StartSpan(ctx, "toodledo."+op,
		instrumentation.NewSpanAttributeBuilder().WithOperation(op).Build()...)
	defer func() {
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
	}()

	logger := logging.WithOperation(c.logger, op)

	session, err := c.sessions.Session(ctx)
	if err != nil {
		return err
	}

	err = fn(ctx, session)
	if err == nil || !needsReauthorization(err) {
		return err
	}

	logger.Info("authorization rejected, reauthorizing", logging.Err(err))
	instrumentation.AddSpanEvent(span, "reauthorize")

	if rerr := c.sessions.Reauthorize(ctx); rerr != nil {
		return fmt.Errorf("reauthorization failed: %w (after %w)", rerr, err)
	}
	session, err = c.sessions.Session(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, session)
}

// GetAccount returns the account information.
func (c *Client) GetAccount(ctx context.Context) (Account, error) {
	var account Account
	err := c.call(ctx, instrumentation.OperationGetAccount, func(ctx context.Context, t transport.Transport) error {
		body, err := t.Get(ctx, transport.AccountGet, nil)
		if err != nil {
			return err
		}
		if err := apierror.Check(body); err != nil {
			return err
		}
		account, err = AccountSchema.DeserializeJSON(body)
		return err
	})
	return account, err
}

func (q TaskQuery) params() url.Values {
	params := url.Values{}
	if len(q.Fields) > 0 {
		params.Set("fields", strings.Join(q.Fields, ","))
	}
	if !q.ModifiedAfter.IsZero() {
		params.Set("after", strconv.FormatInt(q.ModifiedAfter.Unix(), 10))
	}
	if !q.ModifiedBefore.IsZero() {
		params.Set("before", strconv.FormatInt(q.ModifiedBefore.Unix(), 10))
	}
	if q.Completion != CompletionAny {
		params.Set("comp", q.Completion.wire())
	}
	if q.ID != 0 {
		params.Set("id", strconv.FormatInt(q.ID, 10))
	}
	return params
}

// GetTasks returns every task matching q, requesting pages of 1000.
func (c *Client) GetTasks(ctx context.Context, q TaskQuery) ([]Task, error) {
	var tasks []Task
	err := c.call(ctx, instrumentation.OperationGetTasks, func(ctx context.Context, t transport.Transport) error {
		records, err := c.batch.Paginate(ctx, instrumentation.OperationGetTasks, batch.ReadLimit,
			func(ctx context.Context, start, num int) (json.RawMessage, error) {
				params := q.params()
				params.Set("start", strconv.Itoa(start))
				params.Set("num", strconv.Itoa(num))
				return t.Get(ctx, transport.TasksGet, params)
			})
		if err != nil {
			return err
		}
		tasks, err = TaskSchema.DeserializeAll(records)
		return err
	})
	return tasks, err
}

// GetDeletedTasks returns the tasks deleted after the given time.
func (c *Client) GetDeletedTasks(ctx context.Context, after time.Time) ([]DeletedTask, error) {
	var deleted []DeletedTask
	err := c.call(ctx, instrumentation.OperationGetDeleted, func(ctx context.Context, t transport.Transport) error {
		params := url.Values{}
		if !after.IsZero() {
			params.Set("after", strconv.FormatInt(after.Unix(), 10))
		}
		body, err := t.Get(ctx, transport.TasksDeleted, params)
		if err != nil {
			return err
		}
		if err := apierror.Check(body); err != nil {
			return err
		}
		var page []json.RawMessage
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("expected a JSON array: %w", err)
		}
		if len(page) > 0 {
			page = page[1:]
		}
		deleted, err = DeletedTaskSchema.DeserializeAll(page)
		return err
	})
	return deleted, err
}

// writeTasks sends tasks in chunks of 50 as the "tasks" form field. After a
// reauthorization the retry resumes at the chunk that failed, so records the
// server already accepted are not sent twice.
func (c *Client) writeTasks(ctx context.Context, op string, endpoint transport.Endpoint, tasks []Task, serialize func(*Task) (Object, error)) ([]Task, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	var out []Task
	remaining := tasks
	err := c.call(ctx, op, func(ctx context.Context, t transport.Transport) error {
		encode := func(chunk []Task) (url.Values, error) {
			objs := make([]Object, len(chunk))
			for i := range chunk {
				obj, err := serialize(&chunk[i])
				if err != nil {
					return nil, err
				}
				objs[i] = obj
			}
			return jsonForm("tasks", objs)
		}
		records, err := batch.Write(ctx, c.batch, op, remaining, batch.WriteLimit, encode, poster(t, endpoint))
		decoded, derr := TaskSchema.DeserializeAll(records)
		out = append(out, decoded...)
		if err != nil {
			remaining = remaining[batch.Applied(err):]
			return err
		}
		return derr
	})
	return out, err
}

// AddTasks creates tasks and returns them as stored by the server. Ids set on
// the input are not sent.
func (c *Client) AddTasks(ctx context.Context, tasks []Task) ([]Task, error) {
	return c.writeTasks(ctx, instrumentation.OperationAddTasks, transport.TasksAdd, tasks, TaskSchema.SerializeNew)
}

// EditTasks sends the present fields of each task. Every task needs an id.
func (c *Client) EditTasks(ctx context.Context, tasks []Task) ([]Task, error) {
	for i, task := range tasks {
		if !task.ID.Present() {
			return nil, fmt.Errorf("task %d: %w", i, ErrMissingID)
		}
	}
	return c.writeTasks(ctx, instrumentation.OperationEditTasks, transport.TasksEdit, tasks, TaskSchema.Serialize)
}

// DeleteTasks deletes tasks by id.
func (c *Client) DeleteTasks(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	op := instrumentation.OperationDeleteTasks
	remaining := ids
	return c.call(ctx, op, func(ctx context.Context, t transport.Transport) error {
		encode := func(chunk []int64) (url.Values, error) {
			return jsonForm("tasks", chunk)
		}
		_, err := batch.Write(ctx, c.batch, op, remaining, batch.WriteLimit, encode, poster(t, transport.TasksDelete))
		if err != nil {
			remaining = remaining[batch.Applied(err):]
		}
		return err
	})
}

// CompleteTasks marks tasks as completed on the given date.
func (c *Client) CompleteTasks(ctx context.Context, ids []int64, on time.Time) ([]Task, error) {
	edits := make([]Task, len(ids))
	for i, id := range ids {
		edits[i] = Task{ID: Some(id), CompletedDate: Some(codec.DateOf(on))}
	}
	return c.EditTasks(ctx, edits)
}

// GetFolders returns all folders.
func (c *Client) GetFolders(ctx context.Context) ([]Folder, error) {
	return getList(ctx, c, instrumentation.OperationGetFolders, transport.FoldersGet, FolderSchema)
}

// AddFolder creates a folder.
func (c *Client) AddFolder(ctx context.Context, folder Folder) (Folder, error) {
	return writeOne(ctx, c, instrumentation.OperationAddFolder, transport.FoldersAdd, FolderSchema, &folder, false)
}

// EditFolder changes the present fields of a folder.
func (c *Client) EditFolder(ctx context.Context, folder Folder) (Folder, error) {
	if !folder.ID.Present() {
		return Folder{}, ErrMissingID
	}
	return writeOne(ctx, c, instrumentation.OperationEditFolder, transport.FoldersEdit, FolderSchema, &folder, true)
}

// DeleteFolder deletes a folder by id.
func (c *Client) DeleteFolder(ctx context.Context, id int64) error {
	return c.deleteOne(ctx, instrumentation.OperationDeleteFolder, transport.FoldersDelete, id)
}

// GetContexts returns all contexts.
func (c *Client) GetContexts(ctx context.Context) ([]Context, error) {
	return getList(ctx, c, instrumentation.OperationGetContexts, transport.ContextsGet, ContextSchema)
}

// AddContext creates a context.
func (c *Client) AddContext(ctx context.Context, cx Context) (Context, error) {
	return writeOne(ctx, c, instrumentation.OperationAddContext, transport.ContextsAdd, ContextSchema, &cx, false)
}

// EditContext changes the present fields of a context.
func (c *Client) EditContext(ctx context.Context, cx Context) (Context, error) {
	if !cx.ID.Present() {
		return Context{}, ErrMissingID
	}
	return writeOne(ctx, c, instrumentation.OperationEditContext, transport.ContextsEdit, ContextSchema, &cx, true)
}

// DeleteContext deletes a context by id.
func (c *Client) DeleteContext(ctx context.Context, id int64) error {
	return c.deleteOne(ctx, instrumentation.OperationDeleteContext, transport.ContextsDelete, id)
}

func getList[E any](ctx context.Context, c *Client, op string, endpoint transport.Endpoint, schema *Schema[E]) ([]E, error) {
	var out []E
	err := c.call(ctx, op, func(ctx context.Context, t transport.Transport) error {
		body, err := t.Get(ctx, endpoint, nil)
		if err != nil {
			return err
		}
		if err := apierror.Check(body); err != nil {
			return err
		}
		var records []json.RawMessage
		if err := json.Unmarshal(body, &records); err != nil {
			return fmt.Errorf("%s: expected a JSON array: %w", endpoint, err)
		}
		out, err = schema.DeserializeAll(records)
		return err
	})
	return out, err
}

// writeOne posts a single serialized entity as form fields and returns the
// first record of the response.
func writeOne[E any](ctx context.Context, c *Client, op string, endpoint transport.Endpoint, schema *Schema[E], e *E, withID bool) (E, error) {
	var out E
	serialize := schema.SerializeNew
	if withID {
		serialize = schema.Serialize
	}
	obj, err := serialize(e)
	if err != nil {
		return out, err
	}

	err = c.call(ctx, op, func(ctx context.Context, t transport.Transport) error {
		body, err := t.Post(ctx, endpoint, obj.Form())
		if err != nil {
			return err
		}
		if err := apierror.Check(body); err != nil {
			return err
		}
		records := elementsOf(body)
		if len(records) == 0 {
			return fmt.Errorf("%s: empty response", endpoint)
		}
		out, err = schema.DeserializeJSON(records[0])
		return err
	})
	return out, err
}

func (c *Client) deleteOne(ctx context.Context, op string, endpoint transport.Endpoint, id int64) error {
	if id <= 0 {
		return ErrMissingID
	}
	return c.call(ctx, op, func(ctx context.Context, t transport.Transport) error {
		body, err := t.Post(ctx, endpoint, url.Values{"id": {strconv.FormatInt(id, 10)}})
		if err != nil {
			return err
		}
		if err := apierror.Check(body); err != nil {
			return err
		}
		var resp struct {
			Deleted json.Number `json:"deleted"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%s: unexpected response %s", endpoint, body)
		}
		if got, err := resp.Deleted.Int64(); err != nil || got != id {
			return fmt.Errorf("%s: server confirmed deletion of %q, expected %d", endpoint, resp.Deleted, id)
		}
		return nil
	})
}

func poster(t transport.Transport, endpoint transport.Endpoint) batch.PostFunc {
	return func(ctx context.Context, form url.Values) (json.RawMessage, error) {
		return t.Post(ctx, endpoint, form)
	}
}

func jsonForm(key string, v any) (url.Values, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return url.Values{key: {string(b)}}, nil
}

func elementsOf(body json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err == nil {
		return items
	}
	return []json.RawMessage{body}
}
