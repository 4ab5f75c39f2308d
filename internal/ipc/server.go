package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"fermata/internal/daemon"
	"fermata/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, logger: logger.With(logging.String(logging.FieldComponent, "ipc"))}
	if err := rpcServer.RegisterName("Fermata", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
}

// Status returns the daemon's aggregate snapshot.
func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status, err := s.daemon.Status(context.Background())
	if err != nil {
		return err
	}
	resp.Status = status
	return nil
}

// Pause suspends one or all workers.
func (s *service) Pause(req PauseRequest, resp *PauseResponse) error {
	if err := s.daemon.Pause(req.Provider); err != nil {
		return err
	}
	resp.Paused = true
	return nil
}

// Resume lifts a pause on one or all workers.
func (s *service) Resume(req ResumeRequest, resp *ResumeResponse) error {
	if err := s.daemon.Resume(req.Provider); err != nil {
		return err
	}
	resp.Resumed = true
	return nil
}

// Stop requests daemon shutdown. The reply is sent before the process
// begins exiting.
func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Info("stop requested over ipc")
	s.daemon.RequestShutdown()
	resp.Stopping = true
	return nil
}
