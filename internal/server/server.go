package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	anetserver "github.com/andrei-cloud/anet/server"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_pool/internal/host"
	"github.com/andrei-cloud/go_pool/internal/logging"
	"github.com/andrei-cloud/go_pool/internal/pool"
	"github.com/andrei-cloud/go_pool/internal/preset"
)

// requestTimeout bounds how long a request waits for the host loop.
const requestTimeout = 5 * time.Second

// logAdapter implements anet.Logger using zerolog.
type logAdapter struct{}

// identified is implemented by instances that carry their own id.
type identified interface {
	ID() uuid.UUID
}

// Server wraps the anet TCP server and forwards pool commands to the host loop.
type Server struct {
	address     string
	srv         *anetserver.Server
	loop        *host.Loop
	prototypes  preset.PrototypeSource
	handles     map[uuid.UUID]pool.Instance // only touched on the host loop
	activeConns int32
}

func (l logAdapter) Print(v ...any) {
	log.Info().Msg(fmt.Sprint(v...))
}

func (l logAdapter) Printf(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (l logAdapter) Infof(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (l logAdapter) Warnf(format string, v ...any) {
	log.Warn().Msgf(format, v...)
}

func (l logAdapter) Errorf(format string, v ...any) {
	log.Error().Msgf(format, v...)
}

// NewServer configures and returns the pool server instance.
// prototypes resolves the prototype names of categories added over the wire.
func NewServer(address string, loop *host.Loop, prototypes preset.PrototypeSource) (*Server, error) {
	cfg := &anetserver.ServerConfig{
		MaxConns:        100,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     0 * time.Second, // disable idle connection closure.
		ShutdownTimeout: 5 * time.Second,
		Logger:          logAdapter{},
	}

	s := &Server{
		address:    address,
		loop:       loop,
		prototypes: prototypes,
		handles:    make(map[uuid.UUID]pool.Instance),
	}
	handler := anetserver.HandlerFunc(s.handle)
	srv, err := anetserver.NewServer(address, handler, cfg)
	if err != nil {
		return nil, fmt.Errorf("server setup failed: %w", err)
	}
	s.srv = srv

	return s, nil
}

// Start begins listening for connections.
func (s *Server) Start() error {
	log.Info().Str("address", s.address).Msg("server started")
	return s.srv.Start()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	return s.srv.Stop()
}

// Reload changes the host scope. Handles issued by a discarded manager are forgotten.
func (s *Server) Reload(ctx context.Context) error {
	return s.loop.Reload(ctx, func(_ *pool.Manager, rebuilt bool) {
		if rebuilt {
			clear(s.handles)
		}
	})
}

// incrementCode returns the response code by incrementing the second character.
func incrementCode(cmd string) string {
	b := []byte(cmd)
	if len(b) < 2 {
		return cmd
	}
	if b[1] == 'Z' {
		b[1] = 'A'
	} else {
		b[1]++
	}

	return string(b)
}

func (s *Server) handle(conn *anetserver.ServerConn, data []byte) ([]byte, error) {
	client := conn.Conn.RemoteAddr().String()
	atomic.AddInt32(&s.activeConns, 1)
	defer atomic.AddInt32(&s.activeConns, -1)

	start := time.Now()
	if len(data) < 2 {
		log.Error().Str("client_ip", client).Msg("malformed request")
		return nil, errors.New("malformed request")
	}

	cmd := string(data[:2])
	logging.LogRequest(client, cmd, string(data[2:]), int(atomic.LoadInt32(&s.activeConns)))

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.Process(ctx, data)

	logging.LogResponse(client, cmd, string(resp[:2]), string(resp[2:4]), time.Since(start))

	return resp, nil
}
