// Package verification serves the domain-verification file on its own
// listener, independent of the interactive page server.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var ErrAlreadyListening = errors.New("verification responder already listening")

type State int32

const (
	StateIdle State = iota
	StateListening
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	default:
		return "idle"
	}
}

type Config struct {
	Addr     string
	FilePath string
	// Path is the exact request path answered with the file. Defaults to
	// "/" + the file's base name.
	Path string
}

type Responder struct {
	cfg    Config
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

func NewResponder(cfg Config, logger *slog.Logger) *Responder {
	return &Responder{
		cfg:    cfg,
		path:   NormalizePath(cfg.Path, cfg.FilePath),
		logger: logger,
	}
}

// NormalizePath returns the request path the responder answers on.
func NormalizePath(path, filePath string) string {
	if path == "" {
		path = filepath.Base(filePath)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// NewHandler answers GET and HEAD requests whose escaped path equals path with
// content as text/plain, and every other request with 404.
func NewHandler(path string, content []byte) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.Any("/*", func(c echo.Context) error {
		req := c.Request()
		if req.URL.EscapedPath() != path || (req.Method != http.MethodGet && req.Method != http.MethodHead) {
			return c.String(http.StatusNotFound, "404 page not found")
		}
		return c.Blob(http.StatusOK, "text/plain", content)
	})

	return e
}

// Start reads the verification file once and begins serving it on a
// dedicated goroutine. The file content is fixed for the life of the listener.
func (r *Responder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateListening {
		return ErrAlreadyListening
	}

	content, err := os.ReadFile(r.cfg.FilePath)
	if err != nil {
		return fmt.Errorf("read verification file: %w", err)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", r.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.cfg.Addr, err)
	}

	server := &http.Server{
		Handler:           NewHandler(r.path, content),
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan struct{})

	r.server = server
	r.listener = ln
	r.done = done
	r.state = StateListening

	go func() {
		defer close(done)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("verification responder stopped", "error", err)
		}
		r.mu.Lock()
		if r.server == server {
			r.state = StateIdle
		}
		r.mu.Unlock()
	}()

	r.logger.Info("verification responder listening", "addr", ln.Addr().String(), "path", r.path)
	return nil
}

// Stop shuts the listener down and waits for the serving goroutine to exit.
func (r *Responder) Stop(ctx context.Context) error {
	r.mu.Lock()
	server, done := r.server, r.done
	r.server = nil
	r.listener = nil
	r.state = StateIdle
	r.mu.Unlock()

	if server == nil {
		return nil
	}

	err := server.Shutdown(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	r.logger.Info("verification responder stopped")
	return err
}

func (r *Responder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Responder) Path() string {
	return r.path
}

// Addr is the bound address while listening and "" otherwise.
func (r *Responder) Addr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}
