package cmd

import (
	"bytes"
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/toodledo/internal/logging"
	"github.com/teemow/toodledo/internal/server"
	"github.com/teemow/toodledo/internal/toodledo"
	"github.com/teemow/toodledo/internal/transport"
)

func TestWatcherPoll(t *testing.T) {
	account := `{"userid":"td1","lastedit_task":1717934400,"lastdelete_task":1717930000}`
	api := &fakeAPI{responses: map[transport.Endpoint]func(url.Values) string{
		transport.AccountGet: func(url.Values) string { return account },
		transport.TasksGet: fixed(`[{"num":2,"total":2},` +
			`{"id":1,"title":"Buy milk","modified":1717938000,"completed":1717934400},` +
			`{"id":2,"title":"Call mom","modified":1717938000,"completed":0,"duedate":1717934400}]`),
		transport.TasksDeleted: fixed(`[{"num":1},{"id":3,"stamp":1717938000}]`),
	}}

	var out bytes.Buffer
	health := server.NewHealthChecker(time.Minute)
	w := &watcher{
		client: toodledo.NewClient(api),
		out:    &out,
		logger: logging.Discard(),
		health: health,
	}
	ctx := context.Background()

	// The first poll only records the baseline.
	require.NoError(t, w.poll(ctx))
	assert.Empty(t, out.String())
	assert.False(t, health.LastSuccess().IsZero())
	require.Len(t, api.Calls(), 1)

	// Nothing changed.
	require.NoError(t, w.poll(ctx))
	assert.Empty(t, out.String())
	require.Len(t, api.Calls(), 2)

	// A task edit and a deletion.
	account = `{"userid":"td1","lastedit_task":1717938000,"lastdelete_task":1717938000}`
	require.NoError(t, w.poll(ctx))

	calls := api.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, transport.TasksGet, calls[3].endpoint)
	assert.Equal(t, "1717934400", calls[3].values.Get("after"))
	assert.Equal(t, transport.TasksDeleted, calls[4].endpoint)

	printed := out.String()
	assert.Contains(t, printed, "completed  1  Buy milk")
	assert.Contains(t, printed, "changed    2  Call mom  (due 2024-06-09)")
	assert.Contains(t, printed, "deleted    3")
	assert.Equal(t, time.Unix(1717938000, 0).UTC(), w.since.UTC())
}

func TestWatcherPollError(t *testing.T) {
	api := &fakeAPI{responses: map[transport.Endpoint]func(url.Values) string{
		transport.AccountGet: fixed(`{"errorCode":500,"errorDesc":"Server down"}`),
	}}
	health := server.NewHealthChecker(time.Minute)
	w := &watcher{
		client: toodledo.NewClient(api),
		out:    &bytes.Buffer{},
		logger: logging.Discard(),
		health: health,
	}

	require.Error(t, w.poll(context.Background()))
	assert.True(t, health.LastSuccess().IsZero())
	assert.False(t, w.started)
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	api := &fakeAPI{responses: map[transport.Endpoint]func(url.Values) string{
		transport.AccountGet: fixed(`{"userid":"td1","lastedit_task":1717934400}`),
	}}
	w := &watcher{
		client: toodledo.NewClient(api),
		out:    &bytes.Buffer{},
		logger: logging.Discard(),
		health: server.NewHealthChecker(time.Minute),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx, time.Hour) }()

	require.Eventually(t, func() bool { return len(api.Calls()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
