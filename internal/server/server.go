package server

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/wirekv-go/internal/command"
	"github.com/yndnr/wirekv-go/internal/decoder"
	"github.com/yndnr/wirekv-go/internal/keyspace"
	"github.com/yndnr/wirekv-go/internal/protocol"
	"github.com/yndnr/wirekv-go/internal/server/config"
	"github.com/yndnr/wirekv-go/internal/telemetry/metric"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// Decoder selects the wire decoder: config.DecoderStream or
	// config.DecoderBatch.
	Decoder string
	// LegacyAbort closes the connection on command validation errors
	// instead of replying with a protocol error.
	LegacyAbort bool
	// RateLimit is the maximum number of commands per second per
	// connection. Set to 0 to disable rate limiting.
	RateLimit int
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:    config.DefaultAddr,
		Decoder: config.DecoderStream,
	}
}

// Server accepts client connections and serves commands against a store.
type Server struct {
	cfg    *Config
	store  *keyspace.Store
	logger *slog.Logger

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	connsActive atomic.Int64
	connsTotal  atomic.Uint64
}

// New creates a new server.
func New(cfg *Config, store *keyspace.Store, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// ActiveConnections returns the number of currently open connections.
func (s *Server) ActiveConnections() int64 {
	return s.connsActive.Load()
}

// TotalConnections returns the number of connections accepted since start.
func (s *Server) TotalConnections() uint64 {
	return s.connsTotal.Load()
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the listen address and begins accepting connections in a
// background goroutine. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)

	s.logger.Info("server listening",
		"address", ln.Addr().String(),
		"decoder", s.cfg.Decoder)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("accept loop error", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server: it closes the listener and
// waits for in-flight connections to finish or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, c)
		}()
	}
}

func (s *Server) newDecoder(c net.Conn) decoder.Decoder {
	if s.cfg.Decoder == config.DecoderBatch {
		return decoder.NewBatch(c)
	}
	return decoder.NewStream(c)
}

func (s *Server) serveConn(ctx context.Context, c net.Conn) {
	defer c.Close()

	connID := ulid.Make().String()
	logger := s.logger.With("conn", connID, "remote", c.RemoteAddr().String())

	s.connsTotal.Add(1)
	s.connsActive.Add(1)
	defer s.connsActive.Add(-1)

	logger.Debug("connection opened")
	defer logger.Debug("connection closed")

	var limiter *rate.Limiter
	if s.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateLimit)
	}

	dec := s.newDecoder(c)
	bw := bufio.NewWriter(c)

	for {
		value, err := dec.Next()
		if err != nil {
			if errors.Is(err, decoder.ErrClosed) {
				return
			}
			if errors.Is(err, decoder.ErrLimitExceeded) {
				metric.CommandErrors.WithLabelValues("limit").Inc()
				logger.Warn("protocol limit exceeded", "error", err)
				s.reply(bw, protocol.Error("ERR", "protocol limit exceeded"))
				return
			}
			if errors.Is(err, decoder.ErrProtocol) {
				metric.CommandErrors.WithLabelValues("protocol").Inc()
				logger.Debug("protocol error", "error", err)
				s.reply(bw, protocol.Error("ERR", "protocol error: "+err.Error()))
				return
			}
			logger.Debug("read error", "error", err)
			return
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}

		cmd, err := command.Parse(value)
		if err != nil {
			metric.CommandErrors.WithLabelValues("command").Inc()
			logger.Debug("command rejected", "error", err)
			if s.cfg.LegacyAbort {
				return
			}
			var cmdErr *command.Error
			if errors.As(err, &cmdErr) {
				if !s.reply(bw, protocol.Error(cmdErr.Kind, cmdErr.Message)) {
					return
				}
			} else {
				if !s.reply(bw, protocol.Error("ERR", err.Error())) {
					return
				}
			}
			continue
		}

		start := time.Now()
		result := command.Execute(cmd, s.store)
		metric.CommandCount.WithLabelValues(cmd.Name()).Inc()
		metric.CommandDuration.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())

		if !s.reply(bw, result) {
			return
		}
	}
}

// reply encodes and flushes one value; it reports whether the connection
// is still usable.
func (s *Server) reply(bw *bufio.Writer, v protocol.Value) bool {
	if _, err := bw.Write(protocol.Encode(v)); err != nil {
		return false
	}
	return bw.Flush() == nil
}
