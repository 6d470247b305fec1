package server

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/toodledo/internal/toodledo"
)

type countingFactory struct {
	mu       sync.Mutex
	accounts []string
	err      error
}

func (f *countingFactory) create(_ context.Context, account string) (*toodledo.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = append(f.accounts, account)
	if f.err != nil {
		return nil, f.err
	}
	return toodledo.NewClient(nil), nil
}

func TestNewServerContext_RequiresFactory(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	require.Error(t, err)
}

func TestServerContext_ClientForAccount(t *testing.T) {
	factory := &countingFactory{}
	sc, err := NewServerContext(context.Background(), factory.create)
	require.NoError(t, err)

	first, err := sc.ClientForAccount("")
	require.NoError(t, err)
	second, err := sc.ClientForAccount("default")
	require.NoError(t, err)
	assert.Same(t, first, second)

	work, err := sc.ClientForAccount("work")
	require.NoError(t, err)
	assert.NotSame(t, first, work)

	assert.Equal(t, []string{"default", "work"}, factory.accounts)
}

func TestServerContext_InvalidAccount(t *testing.T) {
	factory := &countingFactory{}
	sc, err := NewServerContext(context.Background(), factory.create)
	require.NoError(t, err)

	_, err = sc.ClientForAccount("../etc/passwd")
	require.Error(t, err)
	assert.Empty(t, factory.accounts)
}

func TestServerContext_FactoryError(t *testing.T) {
	factory := &countingFactory{err: errors.New("no token")}
	sc, err := NewServerContext(context.Background(), factory.create)
	require.NoError(t, err)

	_, err = sc.ClientForAccount("work")
	require.Error(t, err)
	assert.ErrorIs(t, err, factory.err)
	assert.Contains(t, err.Error(), "work")

	// Failures are not cached.
	factory.err = nil
	_, err = sc.ClientForAccount("work")
	require.NoError(t, err)
	assert.Len(t, factory.accounts, 2)
}

func TestServerContext_SetClientForAccount(t *testing.T) {
	factory := &countingFactory{}
	sc, err := NewServerContext(context.Background(), factory.create)
	require.NoError(t, err)

	client := toodledo.NewClient(nil)
	sc.SetClientForAccount("work", client)

	got, err := sc.ClientForAccount("work")
	require.NoError(t, err)
	assert.Same(t, client, got)
	assert.Empty(t, factory.accounts)
}

func TestServerContext_Shutdown(t *testing.T) {
	factory := &countingFactory{}
	sc, err := NewServerContext(context.Background(), factory.create)
	require.NoError(t, err)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.ErrorIs(t, sc.Context().Err(), context.Canceled)

	_, err = sc.ClientForAccount("default")
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestServerContext_Options(t *testing.T) {
	factory := &countingFactory{}
	sc, err := NewServerContext(context.Background(), factory.create, WithLogger(nil), WithMetrics(nil))
	require.NoError(t, err)

	assert.NotNil(t, sc.Logger())
	assert.Nil(t, sc.Metrics())
	assert.Nil(t, sc.AuditLogger())
}
