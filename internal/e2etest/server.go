package e2etest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3" // Registers the sqlite3 driver for the test's database handle.
	"github.com/myrjola/skillplan/internal/errors"
	"github.com/myrjola/skillplan/internal/logging"
)

// LogAddrKey is the key used to log the address the server is listening on.
const LogAddrKey = "addr"

// LogDsnKey is the data source name key used to log the SQL DSN.
const LogDsnKey = "sqlDsn"

// RunFunc starts the application and blocks until ctx is done. It has the signature of run in cmd/web.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// Server is a running application instance with a client whose session persists between requests.
type Server struct {
	url      string
	client   *Client
	db       *sql.DB
	logger   *slog.Logger
	stop     context.CancelCauseFunc
	done     chan struct{}
	shutdown sync.Once
}

// StartServer runs the application on the address from lookupEnv, waits for /api/healthy and registers a cleanup
// that shuts it down when t finishes.
//
// logSink receives the server logs, usually testhelpers.NewWriter(t). The application must log the listening address
// under LogAddrKey and the database DSN under LogDsnKey.
func StartServer(t *testing.T, logSink io.Writer, lookupEnv func(string) (string, bool), run RunFunc) (*Server, error) {
	ctx, stop := context.WithCancelCause(t.Context())
	logger, addrCh, dsnCh := newCapturingLogger(logSink)
	server := &Server{
		url:      "",
		client:   nil,
		db:       nil,
		logger:   logger,
		stop:     stop,
		done:     make(chan struct{}),
		shutdown: sync.Once{},
	}
	t.Cleanup(server.Shutdown)

	go func() {
		defer close(server.done)
		if err := run(ctx, logger, lookupEnv); err != nil {
			stop(err)
		}
	}()

	var addr, dsn string
	for addr == "" || dsn == "" {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("server stopped before it was ready: %w", context.Cause(ctx))
		case addr = <-addrCh:
		case dsn = <-dsnCh:
		}
	}

	var err error
	server.url = "http://" + addr
	if server.client, err = NewClient(server.url); err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = server.client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	if server.db, err = sql.Open("sqlite3", dsn); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return server, nil
}

// newCapturingLogger returns a debug logger writing to logSink that forwards the listening address and the DSN to
// the returned channels.
func newCapturingLogger(logSink io.Writer) (*slog.Logger, <-chan string, <-chan string) {
	addrCh := make(chan string, 1)
	dsnCh := make(chan string, 1)
	forward := func(ch chan string, value string) {
		select {
		case ch <- value:
		default:
		}
	}
	logger := logging.NewWithOptions(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case LogAddrKey:
				forward(addrCh, a.Value.String())
			case LogDsnKey:
				forward(dsnCh, a.Value.String())
			}
			return a
		},
	})
	return logger, addrCh, dsnCh
}

// Client returns the client shared by the test. Its session keeps track of the programs it created.
func (s *Server) Client() *Client {
	return s.client
}

// NewClient returns a client with an empty session, representing another visitor.
func (s *Server) NewClient() (*Client, error) {
	return NewClient(s.url)
}

func (s *Server) URL() string {
	return s.url
}

func (s *Server) DB() *sql.DB {
	return s.db
}

// ProgramCount returns the number of programs stored in the database.
func (s *Server) ProgramCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM programs").Scan(&count); err != nil {
		return 0, fmt.Errorf("count programs: %w", err)
	}
	return count, nil
}

// Shutdown stops the server, waits for run to return and closes the test's database handle. It is safe to call more
// than once.
func (s *Server) Shutdown() {
	s.shutdown.Do(func() {
		s.stop(nil)
		<-s.done
		if s.db == nil {
			return
		}
		if err := s.db.Close(); err != nil {
			s.logger.LogAttrs(context.Background(), slog.LevelError, "close test database", errors.SlogError(err))
		}
	})
}
