// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/luckee-foundation/luckee/lib/codec"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/registry"
)

// Request kinds.
const (
	KindExecute = "execute"
	KindQuery   = "query"
)

// Request is the wire envelope a client sends. Message is the CBOR
// registry message ({action, ...}) passed to Host.Execute or
// Host.Query. Caller is trusted as given: the socket must only be
// reachable by parties allowed to act as any address.
type Request struct {
	Kind    string           `json:"kind"`
	Caller  ref.Address      `json:"caller,omitzero"`
	Message codec.RawMessage `json:"message"`
}

// Response is the wire envelope for every reply. For an execute
// request Data holds the encoded Result; for a query it holds the
// answer.
type Response struct {
	OK    bool             `json:"ok"`
	Error string           `json:"error,omitempty"`
	Code  registry.Code    `json:"code,omitempty"`
	Data  codec.RawMessage `json:"data,omitempty"`
}

// Server exposes a Host on a Unix socket. Each connection carries
// exactly one request-response cycle: the client writes a CBOR
// Request, the server writes a CBOR Response, and the connection
// closes.
type Server struct {
	host       *Host
	socketPath string
	logger     *slog.Logger

	// activeConnections tracks in-flight requests so Serve can wait
	// for them before returning.
	activeConnections sync.WaitGroup
}

// NewServer creates a server that will listen on socketPath.
func NewServer(host *Host, socketPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{host: host, socketPath: socketPath, logger: logger}
}

// Serve accepts connections until ctx is cancelled, then stops
// accepting and waits for active requests to finish. Any stale socket
// file is removed before listening, and the socket file is removed on
// return. If ready is non-nil it is closed once the socket is
// listening.
func (s *Server) Serve(ctx context.Context, ready chan<- struct{}) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("host listening", "path", s.socketPath)
	if ready != nil {
		close(ready)
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// readTimeout bounds how long a client may take to send its request.
const readTimeout = 30 * time.Second

const writeTimeout = 10 * time.Second

// maxRequestSize caps one CBOR request. A full batch mint of 100 items
// is well under this.
const maxRequestSize = 1024 * 1024

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	var request Request
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&request); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		s.writeError(conn, invalidInput("invalid request: %v", err))
		return
	}

	var (
		data any
		err  error
	)
	switch request.Kind {
	case KindExecute:
		data, err = s.host.Execute(ctx, request.Caller, request.Message)
	case KindQuery:
		var answer codec.RawMessage
		answer, err = s.host.Query(ctx, request.Message)
		data = answer
	default:
		err = invalidInput("unknown request kind %q", request.Kind)
	}
	if err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeSuccess(conn, data)
}

// writeError sends {ok: false, error, code}. Write failures are only
// logged; the connection is closing regardless.
func (s *Server) writeError(conn net.Conn, failure error) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(Response{
		OK:    false,
		Error: failure.Error(),
		Code:  registry.CodeOf(failure),
	}); err != nil {
		s.logger.Debug("failed to write error response", "error", err)
	}
}

func (s *Server) writeSuccess(conn net.Conn, result any) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	response := Response{OK: true}
	switch value := result.(type) {
	case codec.RawMessage:
		response.Data = value
	default:
		data, err := codec.Marshal(value)
		if err != nil {
			s.writeError(conn, fmt.Errorf("internal: marshaling response: %w", err))
			return
		}
		response.Data = data
	}

	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write success response", "error", err)
	}
}
