// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/luckee-foundation/luckee/lib/codec"
	"github.com/luckee-foundation/luckee/lib/ref"
	"github.com/luckee-foundation/luckee/lib/registry"
)

// dialTimeout covers only the connect phase.
const dialTimeout = 5 * time.Second

// responseReadTimeout matches the server's read plus write timeouts.
const responseReadTimeout = 45 * time.Second

const maxResponseSize = 1024 * 1024

// RemoteError is returned by Client when the server answers ok=false.
// Code is the registry error code, empty for non-registry failures.
type RemoteError struct {
	Code    registry.Code
	Message string
}

func (e *RemoteError) Error() string {
	return "host: " + e.Message
}

// Is lets errors.Is match a RemoteError against the registry code
// sentinels, e.g. errors.Is(err, registry.ErrNotFound).
func (e *RemoteError) Is(target error) bool {
	sentinel, ok := target.(*registry.Error)
	return ok && sentinel.Message == "" && e.Code != "" && sentinel.Code == e.Code
}

// Client calls a Server. Each call opens a new connection.
type Client struct {
	socketPath string
}

// NewClient returns a client for the server at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Execute runs msg as caller on the server.
func (c *Client) Execute(ctx context.Context, caller ref.Address, msg []byte) (*Result, error) {
	data, err := c.call(ctx, Request{Kind: KindExecute, Caller: caller, Message: msg})
	if err != nil {
		return nil, err
	}
	var result Result
	if err := codec.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("host: decoding execute result: %w", err)
	}
	return &result, nil
}

// Query answers msg on the server and returns the CBOR answer.
func (c *Client) Query(ctx context.Context, msg []byte) (codec.RawMessage, error) {
	return c.call(ctx, Request{Kind: KindQuery, Message: msg})
}

func (c *Client) call(ctx context.Context, request Request) (codec.RawMessage, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	conn.SetReadDeadline(time.Now().Add(responseReadTimeout))
	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if !response.OK {
		return nil, &RemoteError{Code: response.Code, Message: response.Error}
	}
	return response.Data, nil
}
