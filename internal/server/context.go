package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/toodledo/internal/auth"
	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/toodledo"
)

// ErrShutdown is returned for client requests after Shutdown.
var ErrShutdown = errors.New("server is shutting down")

// ClientFactory creates the Toodledo client of an account.
type ClientFactory func(ctx context.Context, account string) (*toodledo.Client, error)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	factory     ClientFactory
	clients     map[string]*toodledo.Client // Maps account name to client
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorded by tool handlers.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = metrics
	}
}

// WithAuditLogger sets the audit logger for tools that change data.
func WithAuditLogger(auditLogger *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.auditLogger = auditLogger
	}
}

// NewServerContext creates a new server context. Clients are created lazily
// by factory the first time an account is used.
func NewServerContext(ctx context.Context, factory ClientFactory, opts ...Option) (*ServerContext, error) {
	if factory == nil {
		return nil, errors.New("client factory is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		factory: factory,
		clients: make(map[string]*toodledo.Client),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// ClientForAccount returns the client of account, creating and caching it on
// first use.
func (sc *ServerContext) ClientForAccount(account string) (*toodledo.Client, error) {
	if account == "" {
		account = auth.DefaultAccount
	}
	if err := auth.ValidateAccountName(account); err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, ErrShutdown
	}
	if client, ok := sc.clients[account]; ok {
		return client, nil
	}

	client, err := sc.factory(sc.ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create toodledo client for account %s: %w", account, err)
	}
	sc.clients[account] = client
	sc.logger.Debug("created toodledo client", slog.String("account", account))
	return client, nil
}

// SetClientForAccount sets the client of account.
func (sc *ServerContext) SetClientForAccount(account string, client *toodledo.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.clients[account] = client
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics, or nil when instrumentation is disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil when not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.clients = make(map[string]*toodledo.Client)
	sc.cancel()
	return nil
}
