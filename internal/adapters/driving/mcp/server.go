package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

type ownerKey struct{}

const sessionIDHeader = "Mcp-Session-Id"

// Server is the MCP server for docqa. Every MCP session is bound to the
// owner its token named when the session started.
type Server struct {
	ports   *Ports
	metrics http.Handler

	mu     sync.Mutex
	owners map[string]string // session ID -> owner ID
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	return &Server{ports: ports, owners: make(map[string]string)}, nil
}

// SetMetricsHandler mounts h at /metrics when serving over HTTP.
func (s *Server) SetMetricsHandler(h http.Handler) {
	s.metrics = h
}

// newSession builds an MCP server whose tools act on behalf of ownerID.
func (s *Server) newSession(ownerID string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "docqa",
		Version: Version,
	}, &mcp.ServerOptions{
		// Only consulted by the HTTP transport, once per new session.
		GetSessionID: func() string {
			id := uuid.NewString()
			s.bindSession(id, ownerID)
			return id
		},
	})

	sess := &session{ports: s.ports, ownerID: ownerID}
	sess.registerTools(server)
	sess.registerResources(server)
	return server
}

// Run authenticates token once and serves over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context, token string) error {
	ownerID, err := s.ports.Auth.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	logger.Debug("MCP stdio session for owner %s", ownerID)
	return s.newSession(ownerID).Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP handler: the MCP endpoint at / behind bearer
// token authentication, plus /metrics when a metrics handler is set.
func (s *Server) Handler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		ownerID, ok := r.Context().Value(ownerKey{}).(string)
		if !ok {
			return nil
		}
		return s.newSession(ownerID)
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/", s.authenticate(streamable))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// authenticate resolves the Authorization header to an owner before the
// request reaches the MCP handler. A request naming an existing session must
// carry a token for the owner that started it.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		ownerID, err := s.ports.Auth.Authenticate(r.Context(), token)
		if err != nil {
			logger.Debug("MCP request rejected: %v", err)
			w.Header().Set("WWW-Authenticate", `Bearer realm="docqa"`)
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		if sessionID := r.Header.Get(sessionIDHeader); sessionID != "" {
			owner, ok := s.sessionOwner(sessionID)
			if !ok {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
			if owner != ownerID {
				logger.Warn("MCP session %s used by owner %s, bound to another owner", sessionID, ownerID)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if r.Method == http.MethodDelete {
				defer s.unbindSession(sessionID)
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, ownerID)))
	})
}

func (s *Server) bindSession(sessionID, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[sessionID] = ownerID
}

func (s *Server) unbindSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, sessionID)
}

func (s *Server) sessionOwner(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[sessionID]
	return owner, ok
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
