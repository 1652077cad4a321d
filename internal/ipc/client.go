package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"
)

// Send performs one request/response roundtrip. timeout bounds the dial and
// the whole exchange.
func Send(ctx context.Context, path string, req Request, timeout time.Duration) (Response, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// Forward sends req to a running daemon. handled is false when nothing is
// listening on path, so the caller may act locally. A daemon that answers
// with OK=false yields its error text.
func Forward(ctx context.Context, path string, req Request, timeout time.Duration) (resp Response, handled bool, err error) {
	resp, err = Send(ctx, path, req, timeout)
	switch {
	case err == nil && resp.OK:
		return resp, true, nil
	case err == nil:
		return resp, true, errors.New(resp.Error)
	case IsNoDaemon(err):
		return Response{}, false, nil
	default:
		return Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
	}
}

// Probe checks whether a responsive owner is currently listening on path.
func Probe(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	_, err := Send(ctx, path, Request{Command: CommandStatus}, timeout)
	if err == nil {
		return true, nil
	}
	if IsNoDaemon(err) {
		return false, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

// IsNoDaemon reports dial failures that mean no daemon owns the socket: the
// path is missing or nothing accepts on it.
func IsNoDaemon(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(err.Error(), "no such file or directory")
}
