// Package server provides the preview development server: it hosts the
// editing session over HTTP, keeps the compiled preview current through
// the debounced compile pipeline, and pushes preview updates to connected
// browsers over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mailframe/mailframe/internal/compiler"
	"github.com/mailframe/mailframe/internal/config"
	"github.com/mailframe/mailframe/internal/editor"
	"github.com/mailframe/mailframe/internal/logging"
	"github.com/mailframe/mailframe/internal/projector"
	"github.com/mailframe/mailframe/internal/registry"
)

// PreviewServer hosts one editing session and its live preview.
type PreviewServer struct {
	config   *config.Config
	logger   *logging.Logger
	registry *registry.SchemaRegistry
	compiler *compiler.Client

	session   *editor.Session
	scheduler *editor.CompileScheduler

	mu          sync.Mutex
	previewHTML string
	previewErr  string

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]chan []byte

	httpServer *http.Server
}

// pushMessage is the WebSocket frame sent to browsers.
type pushMessage struct {
	Type  string `json:"type"` // "preview" or "error"
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// New wires a preview server around the initial template source.
func New(cfg *config.Config, logger *logging.Logger, source string) (*PreviewServer, error) {
	reg, err := registry.NewSchemaRegistry()
	if err != nil {
		return nil, err
	}

	s := &PreviewServer{
		config:   cfg,
		logger:   logger.WithComponent("server"),
		registry: reg,
		compiler: compiler.New(cfg.Compiler.Endpoint, cfg.CompileTimeout()),
		clients:  make(map[*websocket.Conn]chan []byte),
	}
	s.compiler.SetPreviewVariables(cfg.Preview.Variables)

	s.scheduler = editor.NewCompileScheduler(cfg.CompileDebounce(), s.compile, s.deliver)
	session, err := editor.NewSession(source, s.scheduler, editor.SessionOptions{
		HistoryLimit:  cfg.Editor.HistoryLimit,
		SnapshotDelay: cfg.SnapshotDebounce(),
	})
	if err != nil {
		return nil, err
	}
	s.session = session
	return s, nil
}

// Session exposes the editing session, primarily to the file watcher.
func (s *PreviewServer) Session() *editor.Session {
	return s.session
}

// Start serves until ctx is cancelled.
func (s *PreviewServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.logger.Info("preview server listening", "addr", s.config.Addr())

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops the compile pipeline and closes client connections.
func (s *PreviewServer) Shutdown() error {
	s.session.Close()

	s.clientsMu.Lock()
	for conn := range s.clients {
		conn.Close(websocket.StatusNormalClosure, "server shutting down")
	}
	s.clients = make(map[*websocket.Conn]chan []byte)
	s.clientsMu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// compile is the scheduler's CompileFunc.
func (s *PreviewServer) compile(ctx context.Context, markup string) (string, error) {
	return s.compiler.Compile(ctx, markup)
}

// deliver receives compile results for the newest requested state. Compiler
// errors surface as preview-area text and never touch the document; the
// compiled HTML is post-processed so every section is addressable by its
// component index.
func (s *PreviewServer) deliver(result editor.CompileResult) {
	if result.Err != nil {
		var cerr *compiler.CompileError
		if errors.As(result.Err, &cerr) {
			s.setPreviewError(cerr.Message)
		} else {
			s.setPreviewError(result.Err.Error())
		}
		s.logger.Warn("compile failed", result.Err, "token", result.Token)
		return
	}

	recovered := projector.RecoverIndices(result.HTML)

	s.mu.Lock()
	s.previewHTML = recovered
	s.previewErr = ""
	s.mu.Unlock()

	s.logger.Debug("preview updated", "token", result.Token, "bytes", len(recovered))
	s.broadcast(pushMessage{Type: "preview", HTML: recovered})
}

func (s *PreviewServer) setPreviewError(message string) {
	s.mu.Lock()
	s.previewErr = message
	s.mu.Unlock()
	s.broadcast(pushMessage{Type: "error", Error: message})
}

// Preview returns the current recovered preview HTML and any compile error.
func (s *PreviewServer) Preview() (html, compileErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewHTML, s.previewErr
}

func (s *PreviewServer) broadcast(msg pushMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn, send := range s.clients {
		select {
		case send <- payload:
		default:
			// Slow client: drop it rather than blocking the pipeline.
			conn.Close(websocket.StatusPolicyViolation, "write backlog")
			delete(s.clients, conn)
		}
	}
}

func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", err)
		return
	}

	send := make(chan []byte, 64)
	s.clientsMu.Lock()
	s.clients[conn] = send
	s.clientsMu.Unlock()

	// Prime the new client with the current preview state.
	if html, compileErr := s.Preview(); compileErr != "" {
		s.sendTo(send, pushMessage{Type: "error", Error: compileErr})
	} else if html != "" {
		s.sendTo(send, pushMessage{Type: "preview", HTML: html})
	}

	go s.writePump(r.Context(), conn, send)
}

func (s *PreviewServer) sendTo(send chan []byte, msg pushMessage) {
	if payload, err := json.Marshal(msg); err == nil {
		select {
		case send <- payload:
		default:
		}
	}
}

func (s *PreviewServer) writePump(ctx context.Context, conn *websocket.Conn, send chan []byte) {
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-send:
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// checkOrigin only accepts browser connections from the server's own host.
func (s *PreviewServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}
	allowed := []string{
		s.config.Addr(),
		fmt.Sprintf("localhost:%d", s.config.Server.Port),
		fmt.Sprintf("127.0.0.1:%d", s.config.Server.Port),
	}
	for _, host := range allowed {
		if originURL.Host == host {
			return true
		}
	}
	return false
}
