package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/andrei-cloud/go_pool/internal/errorcodes"
	"github.com/andrei-cloud/go_pool/internal/host"
	"github.com/andrei-cloud/go_pool/internal/pool"
)

// Command codes.
const (
	CmdAcquire      = "GA"
	CmdRelease      = "GR"
	CmdReleaseAfter = "GD"
	CmdAdd          = "CA"
	CmdRemove       = "CR"
	CmdStats        = "ST"
)

// Process executes one request and returns the full response frame:
// response code, two character status and an optional body.
func (s *Server) Process(ctx context.Context, data []byte) []byte {
	if len(data) < 2 {
		return []byte("ZZ" + errorcodes.Err15.Code)
	}
	cmd := string(data[:2])
	payload := string(data[2:])

	var (
		body string
		err  error
	)
	switch cmd {
	case CmdAcquire:
		body, err = s.acquire(ctx, payload)
	case CmdRelease:
		err = s.release(ctx, payload)
	case CmdReleaseAfter:
		err = s.releaseAfter(ctx, payload)
	case CmdAdd:
		err = s.add(ctx, payload)
	case CmdRemove:
		err = s.remove(ctx, payload)
	case CmdStats:
		body, err = s.stats(ctx)
	default:
		err = errorcodes.Err68
	}

	return []byte(incrementCode(cmd) + errorcodes.Code(err) + body)
}

// acquire handles "name[;x,y,z[;qx,qy,qz,qw]]" and answers "id;source".
func (s *Server) acquire(ctx context.Context, payload string) (string, error) {
	parts := strings.Split(payload, ";")
	name := parts[0]
	if name == "" || len(parts) > 3 {
		return "", errorcodes.Err15
	}

	var (
		p         pool.Placement
		placed    bool
		err       error
		rotations []float64
	)
	if len(parts) > 1 {
		pos, perr := parseFloats(parts[1], 3)
		if perr != nil {
			return "", perr
		}
		copy(p.Position[:], pos)
		placed = true
	}
	if len(parts) > 2 {
		rotations, err = parseFloats(parts[2], 4)
		if err != nil {
			return "", err
		}
		copy(p.Rotation[:], rotations)
	}

	var reply string
	err = s.loop.Do(ctx, func(m *pool.Manager) error {
		at := m.Placement()
		if placed {
			at = p
		}
		res, err := m.AcquireWithSource(name, at)
		if err != nil {
			return err
		}
		if res.Instance == nil {
			return errorcodes.Err01
		}
		id := uuid.New()
		if v, ok := res.Instance.(identified); ok {
			id = v.ID()
		}
		s.handles[id] = res.Instance
		reply = id.String() + ";" + res.Source.String()

		return nil
	})

	return reply, wrapStopped(err)
}

// release handles "id".
func (s *Server) release(ctx context.Context, payload string) error {
	id, err := uuid.Parse(payload)
	if err != nil {
		return errorcodes.Err15
	}

	return wrapStopped(s.loop.Do(ctx, func(m *pool.Manager) error {
		inst, ok := s.handles[id]
		if !ok {
			return errorcodes.Err16
		}
		delete(s.handles, id)

		return m.Release(inst)
	}))
}

// releaseAfter handles "id;duration". The handle is invalid as soon as the release is scheduled.
func (s *Server) releaseAfter(ctx context.Context, payload string) error {
	idPart, delayPart, ok := strings.Cut(payload, ";")
	if !ok {
		return errorcodes.Err15
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return errorcodes.Err15
	}
	delay, err := time.ParseDuration(delayPart)
	if err != nil {
		return errorcodes.Err15
	}

	return wrapStopped(s.loop.Do(ctx, func(m *pool.Manager) error {
		inst, ok := s.handles[id]
		if !ok {
			return errorcodes.Err16
		}
		delete(s.handles, id)
		m.ReleaseAfter(inst, delay)

		return nil
	}))
}

// add handles "name;capacity;prototype".
func (s *Server) add(ctx context.Context, payload string) error {
	parts := strings.Split(payload, ";")
	if len(parts) != 3 || parts[0] == "" {
		return errorcodes.Err15
	}
	capacity, err := strconv.Atoi(parts[1])
	if err != nil {
		return errorcodes.Err15
	}
	if s.prototypes == nil {
		return errorcodes.Err17
	}
	proto, ok := s.prototypes.Prototype(parts[2])
	if !ok {
		return errorcodes.Err17
	}

	return wrapStopped(s.loop.Do(ctx, func(m *pool.Manager) error {
		return m.Add(proto, parts[0], capacity)
	}))
}

// remove handles "name". Handles into the removed category are dropped.
func (s *Server) remove(ctx context.Context, payload string) error {
	if payload == "" {
		return errorcodes.Err15
	}

	return wrapStopped(s.loop.Do(ctx, func(m *pool.Manager) error {
		if err := m.Remove(payload); err != nil {
			return err
		}
		for id, inst := range s.handles {
			if inst.Name() == payload {
				delete(s.handles, id)
			}
		}

		return nil
	}))
}

func (s *Server) stats(ctx context.Context) (string, error) {
	var st pool.Stats
	err := s.loop.Do(ctx, func(m *pool.Manager) error {
		st = m.Stats()
		return nil
	})
	if err != nil {
		return "", wrapStopped(err)
	}
	b, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encode stats: %w", err)
	}

	return string(b), nil
}

func parseFloats(s string, n int) ([]float64, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, errorcodes.Err15
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errorcodes.Err15
		}
		out[i] = v
	}

	return out, nil
}

func wrapStopped(err error) error {
	if errors.Is(err, host.ErrStopped) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", errorcodes.Err99, err)
	}

	return err
}
