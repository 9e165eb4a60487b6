package mllp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"limslite-service/internal/app/services/shared/metrics"
	"limslite-service/internal/pkg/constvars"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server accepts MLLP connections and serves each one on its own goroutine.
type Server struct {
	Address string
	Handler *Handler
	Limiter *rate.Limiter
	Metrics *metrics.IngestMetrics
	Log     *zap.Logger

	mu           sync.Mutex
	listener     net.Listener
	conns        map[net.Conn]struct{}
	wg           sync.WaitGroup
	shuttingDown bool
}

// NewServer admits at most maxConnectionsPerSecond new connections per
// second. Zero disables the limit.
func NewServer(address string, maxConnectionsPerSecond int, handler *Handler, ingestMetrics *metrics.IngestMetrics, logger *zap.Logger) *Server {
	var limiter *rate.Limiter
	if maxConnectionsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxConnectionsPerSecond), maxConnectionsPerSecond)
	}
	return &Server{
		Address: address,
		Handler: handler,
		Limiter: limiter,
		Metrics: ingestMetrics,
		Log:     logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts on listener until ctx is done, then stops accepting and
// returns nil. Connections already being served keep running; use Shutdown
// to wait for them.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.Log.Info("mllp.Server.Serve listening", zap.String(constvars.LoggingAddressKey, listener.Addr().String()))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			listener.Close()
		case <-stop:
		}
	}()

	var backoff time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.Log.Info("mllp.Server.Serve stopped accepting connections")
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				backoff = nextBackoff(backoff)
				s.Log.Warn("mllp.Server.Serve accept error, retrying", zap.Duration(constvars.LoggingDurationKey, backoff), zap.Error(err))
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				conn.Close()
				continue
			}
		}

		if !s.track(conn) {
			conn.Close()
			continue
		}
		s.Metrics.ConnectionAccepted()
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.Handler.Serve(context.WithoutCancel(ctx), conn)
		}()
	}
}

// Shutdown closes the listener and waits for in-flight connections. When
// ctx expires first the remaining connections are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shuttingDown = true
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()
		<-done
		return ctx.Err()
	}
}

// track registers conn with the wait group. It refuses once Shutdown has
// started so no Add races the final Wait.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuttingDown {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return 5 * time.Millisecond
	}
	if current *= 2; current > time.Second {
		current = time.Second
	}
	return current
}
