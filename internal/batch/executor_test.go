package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/toodledo/internal/apierror"
	"github.com/teemow/toodledo/internal/logging"
)

func newTestExecutor() *Executor {
	return NewExecutor(WithLogger(logging.Discard()))
}

func encodeInts(chunk []int) (url.Values, error) {
	b, err := json.Marshal(chunk)
	if err != nil {
		return nil, err
	}
	return url.Values{"tasks": {string(b)}}, nil
}

// echoPost returns one {"id":n} record per posted item and remembers chunk sizes.
type echoPost struct {
	sizes  []int
	failOn int // 1-based request number that returns an API error
}

func (p *echoPost) post(_ context.Context, form url.Values) (json.RawMessage, error) {
	var items []int
	if err := json.Unmarshal([]byte(form.Get("tasks")), &items); err != nil {
		return nil, err
	}
	p.sizes = append(p.sizes, len(items))
	if len(p.sizes) == p.failOn {
		return json.RawMessage(`{"errorCode":605,"errorDesc":"Invalid task"}`), nil
	}

	records := make([]string, len(items))
	for i, n := range items {
		records[i] = fmt.Sprintf(`{"id":%d}`, n)
	}
	return json.RawMessage("[" + strings.Join(records, ",") + "]"), nil
}

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func TestChunks(t *testing.T) {
	chunks := Chunks(seq(125), WriteLimit)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 50)
	assert.Len(t, chunks[1], 50)
	assert.Len(t, chunks[2], 25)
	assert.Equal(t, 1, chunks[0][0])
	assert.Equal(t, 51, chunks[1][0])
	assert.Equal(t, 125, chunks[2][24])

	assert.Nil(t, Chunks([]int{}, 50))
	assert.Len(t, Chunks(seq(50), 50), 1)
	assert.Nil(t, Chunks(seq(3), 0))
}

func TestWrite_Chunking(t *testing.T) {
	p := &echoPost{}
	records, err := Write(context.Background(), newTestExecutor(), "add_tasks", seq(125), WriteLimit, encodeInts, p.post)

	require.NoError(t, err)
	assert.Equal(t, []int{50, 50, 25}, p.sizes)
	require.Len(t, records, 125)

	// Original order is preserved across chunks.
	for i, raw := range records {
		var rec struct{ ID int }
		require.NoError(t, json.Unmarshal(raw, &rec))
		assert.Equal(t, i+1, rec.ID)
	}
}

func TestWrite_StopsAtFirstFailure(t *testing.T) {
	p := &echoPost{failOn: 2}
	records, err := Write(context.Background(), newTestExecutor(), "add_tasks", seq(125), WriteLimit, encodeInts, p.post)

	require.Error(t, err)
	assert.Equal(t, []int{50, 50}, p.sizes, "request 3 must not be issued")
	assert.Len(t, records, 50, "records of the applied chunk are returned")

	var chunkErr *ChunkError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 2, chunkErr.Chunk)
	assert.Equal(t, 3, chunkErr.Chunks)
	assert.Equal(t, 50, chunkErr.Applied)
	assert.Zero(t, chunkErr.Accepted)
	assert.Equal(t, 50, Applied(err))
	assert.Equal(t, 605, apierror.Code(err))
}

func TestWrite_PartiallyRejectedChunk(t *testing.T) {
	calls := 0
	post := func(context.Context, url.Values) (json.RawMessage, error) {
		calls++
		if calls == 2 {
			return json.RawMessage(`[{"id":3},{"errorCode":601,"errorDesc":"Task title cannot be blank"}]`), nil
		}
		return json.RawMessage(`[{"id":1},{"id":2}]`), nil
	}

	records, err := Write(context.Background(), newTestExecutor(), "add_tasks", seq(6), 2, encodeInts, post)
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	var ids []int
	for _, raw := range records {
		var rec struct{ ID int }
		require.NoError(t, json.Unmarshal(raw, &rec))
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)

	var chunkErr *ChunkError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 2, chunkErr.Chunk)
	assert.Equal(t, 3, chunkErr.Applied)
	assert.Equal(t, 1, chunkErr.Accepted)
	assert.Equal(t, 601, apierror.Code(err))
	assert.Contains(t, err.Error(), "3 records already applied")
}

func TestWrite_TransportFailure(t *testing.T) {
	calls := 0
	post := func(context.Context, url.Values) (json.RawMessage, error) {
		calls++
		return nil, errors.New("connection reset")
	}

	_, err := Write(context.Background(), newTestExecutor(), "delete_tasks", seq(10), WriteLimit, encodeInts, post)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, Applied(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWrite_EncodeFailure(t *testing.T) {
	calls := 0
	post := func(context.Context, url.Values) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`[]`), nil
	}
	encode := func(chunk []int) (url.Values, error) {
		if chunk[0] > 50 {
			return nil, errors.New("title too long")
		}
		return encodeInts(chunk)
	}

	_, err := Write(context.Background(), newTestExecutor(), "add_tasks", seq(60), WriteLimit, encode, post)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 50, Applied(err))
}

func TestWrite_EmptyInputIssuesNoRequest(t *testing.T) {
	calls := 0
	post := func(context.Context, url.Values) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`[]`), nil
	}

	records, err := Write(context.Background(), newTestExecutor(), "add_tasks", []int{}, WriteLimit, encodeInts, post)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, calls)

	records, err = Write(context.Background(), newTestExecutor(), "add_tasks", nil, WriteLimit, encodeInts, post)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, calls)
}

// pager serves pages of the given sizes, each prefixed with a count marker.
type pager struct {
	sizes    []int
	requests []string
}

func (p *pager) fetch(_ context.Context, start, num int) (json.RawMessage, error) {
	i := len(p.requests)
	p.requests = append(p.requests, strconv.Itoa(start)+"/"+strconv.Itoa(num))
	if i >= len(p.sizes) {
		return nil, fmt.Errorf("unexpected page request %d", i+1)
	}

	n := p.sizes[i]
	parts := []string{fmt.Sprintf(`{"num":%d,"total":9999}`, n)}
	for j := 0; j < n; j++ {
		parts = append(parts, fmt.Sprintf(`{"id":%d}`, start+j+1))
	}
	return json.RawMessage("[" + strings.Join(parts, ",") + "]"), nil
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name         string
		sizes        []int
		wantRequests []string
		wantRecords  int
	}{
		{
			name:         "short last page",
			sizes:        []int{1000, 1000, 400},
			wantRequests: []string{"0/1000", "1000/1000", "2000/1000"},
			wantRecords:  2400,
		},
		{
			name:         "exact multiple needs an empty page",
			sizes:        []int{1000, 1000, 1000, 0},
			wantRequests: []string{"0/1000", "1000/1000", "2000/1000", "3000/1000"},
			wantRecords:  3000,
		},
		{
			name:         "no records",
			sizes:        []int{0},
			wantRequests: []string{"0/1000"},
			wantRecords:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &pager{sizes: tt.sizes}
			records, err := newTestExecutor().Paginate(context.Background(), "get_tasks", ReadLimit, p.fetch)

			require.NoError(t, err)
			assert.Equal(t, tt.wantRequests, p.requests)
			assert.Len(t, records, tt.wantRecords)

			// Count markers are stripped, every record is a task.
			for _, raw := range records {
				assert.NotContains(t, string(raw), "total")
			}
		})
	}
}

func TestPaginate_EmbeddedError(t *testing.T) {
	fetch := func(context.Context, int, int) (json.RawMessage, error) {
		return json.RawMessage(`{"errorCode":2,"errorDesc":"Invalid token"}`), nil
	}

	_, err := newTestExecutor().Paginate(context.Background(), "get_tasks", ReadLimit, fetch)
	require.Error(t, err)
	assert.True(t, apierror.IsAuthorization(err))
}

func TestPaginate_NotAnArray(t *testing.T) {
	fetch := func(context.Context, int, int) (json.RawMessage, error) {
		return json.RawMessage(`{"num":0}`), nil
	}

	_, err := newTestExecutor().Paginate(context.Background(), "get_tasks", ReadLimit, fetch)
	assert.Error(t, err)
}
