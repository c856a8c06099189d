package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// ReadHeaderTimeout bounds how long a client may take to send headers.
const ReadHeaderTimeout = 5 * time.Second

// Server represents the status HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// New creates a new server listening on addr.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
		handler: handler,
	}
}

// Listen binds the listen address without serving. Binding up front lets
// callers report an address conflict synchronously and learn the port
// chosen for ":0".
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.httpServer.Addr)
}

// Serve accepts connections on ln until Shutdown. A clean shutdown
// returns nil.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
