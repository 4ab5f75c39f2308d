package ipc

import (
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"fermata/internal/daemon"
)

const dialTimeout = 2 * time.Second

// Client talks to a running daemon over its Unix socket.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to the daemon socket at the given path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	return &Client{rpc: rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// Status fetches the daemon's current snapshot.
func (c *Client) Status() (daemon.Status, error) {
	var resp StatusResponse
	if err := c.rpc.Call("Fermata.Status", StatusRequest{}, &resp); err != nil {
		return daemon.Status{}, err
	}
	return resp.Status, nil
}

// Pause suspends the named worker, or all workers when provider is empty.
func (c *Client) Pause(provider string) error {
	var resp PauseResponse
	return c.rpc.Call("Fermata.Pause", PauseRequest{Provider: provider}, &resp)
}

// Resume lifts a pause on the named worker, or all workers when provider
// is empty.
func (c *Client) Resume(provider string) error {
	var resp ResumeResponse
	return c.rpc.Call("Fermata.Resume", ResumeRequest{Provider: provider}, &resp)
}

// Stop asks the daemon to shut down.
func (c *Client) Stop() error {
	var resp StopResponse
	return c.rpc.Call("Fermata.Stop", StopRequest{}, &resp)
}
