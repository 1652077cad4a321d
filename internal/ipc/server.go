package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// requestTimeout bounds how long a client may take to send its request line.
const requestTimeout = 2 * time.Second

// Handler processes one IPC command request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts unix-socket clients until context cancellation or listener close.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			serveConn(ctx, c, handler)
		}(conn)
	}
}

// serveConn answers one request. The handler runs without a deadline so a
// long utterance is not cut off; only the request read is bounded.
func serveConn(ctx context.Context, c net.Conn, handler Handler) {
	_ = c.SetReadDeadline(time.Now().Add(requestTimeout))
	line, err := bufio.NewReader(c).ReadBytes('\n')
	if err != nil {
		respond(c, Response{OK: false, Error: fmt.Sprintf("read request: %v", err)})
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		respond(c, Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	respond(c, handler.Handle(ctx, req))
}

func respond(c net.Conn, resp Response) {
	_ = json.NewEncoder(c).Encode(resp)
}
