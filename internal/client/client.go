// Package client talks to a pool server over the anet framed TCP protocol.
package client

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/andrei-cloud/anet"
	json "github.com/goccy/go-json"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

// ErrExhausted is returned by Acquire when the server has no instance and pooling is enforced.
var ErrExhausted = errors.New("no instance available")

// StatusError is a non-zero status returned by the server.
type StatusError struct {
	Command string
	Status  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("command %s failed with status %s", e.Command, e.Status)
}

// Handle identifies an acquired instance on the server.
type Handle struct {
	ID     string
	Source string
}

// Client sends requests to a single pool server over one connection.
type Client struct {
	roundTrip func(req *[]byte) ([]byte, error)
	close     func()
	frames    *framePool
}

// Dial prepares a client for the server at addr. Connections are opened on first use.
func Dial(addr string, timeout time.Duration) *Client {
	factory := func(addr string) (anet.PoolItem, error) {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return nil, err
		}

		return conn, nil
	}

	p := anet.NewPool(1, factory, addr, nil)
	broker := anet.NewBroker([]anet.Pool{p}, 1, nil, nil)
	go broker.Start()

	return &Client{
		roundTrip: func(req *[]byte) ([]byte, error) { return broker.Send(req) },
		close: func() {
			broker.Close()
			p.Close()
		},
		frames: newFramePool(),
	}
}

// Close stops the broker and closes the connection.
func (c *Client) Close() {
	c.close()
}

func (c *Client) send(cmd, payload string) (string, error) {
	req := c.frames.get(len(cmd) + len(payload))
	*req = append(*req, cmd...)
	*req = append(*req, payload...)
	resp, err := c.roundTrip(req)
	c.frames.put(req)
	if err != nil {
		return "", fmt.Errorf("send %s: %w", cmd, err)
	}
	if len(resp) < 4 {
		return "", fmt.Errorf("short response to %s: %q", cmd, resp)
	}
	switch status := string(resp[2:4]); status {
	case "00":
		return string(resp[4:]), nil
	case "01":
		return "", ErrExhausted
	default:
		return "", &StatusError{Command: cmd, Status: status}
	}
}

// FrameStats reports request frame reuse.
func (c *Client) FrameStats() FrameStats {
	return c.frames.stats()
}

// Acquire requests an instance of the named category.
func (c *Client) Acquire(name string) (Handle, error) {
	body, err := c.send("GA", name)
	if err != nil {
		return Handle{}, err
	}
	id, source, _ := strings.Cut(body, ";")

	return Handle{ID: id, Source: source}, nil
}

// AcquireAt requests an instance of the named category at p.
func (c *Client) AcquireAt(name string, p pool.Placement) (Handle, error) {
	payload := fmt.Sprintf("%s;%s;%s", name, joinFloats(p.Position[:]), joinFloats(p.Rotation[:]))
	body, err := c.send("GA", payload)
	if err != nil {
		return Handle{}, err
	}
	id, source, _ := strings.Cut(body, ";")

	return Handle{ID: id, Source: source}, nil
}

// Release returns the instance behind id.
func (c *Client) Release(id string) error {
	_, err := c.send("GR", id)
	return err
}

// ReleaseAfter schedules the release of id after delay.
func (c *Client) ReleaseAfter(id string, delay time.Duration) error {
	_, err := c.send("GD", id+";"+delay.String())
	return err
}

// Add creates a category of capacity instances built from prototype.
func (c *Client) Add(name string, capacity int, prototype string) error {
	_, err := c.send("CA", name+";"+strconv.Itoa(capacity)+";"+prototype)
	return err
}

// Remove drops the named category.
func (c *Client) Remove(name string) error {
	_, err := c.send("CR", name)
	return err
}

// Stats fetches the occupancy snapshot.
func (c *Client) Stats() (pool.Stats, error) {
	var st pool.Stats
	body, err := c.send("ST", "")
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		return st, fmt.Errorf("decode stats: %w", err)
	}

	return st, nil
}

func joinFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
