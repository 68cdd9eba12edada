// rcon/client.go - remote console channel to game servers
package rcon

import (
	"fmt"
	"strings"
	"time"

	gorcon "github.com/gorcon/rcon"
)

// Console is the command/response channel a game server exposes. Every call
// is fallible network I/O; failures surface as warnings, never fatals.
type Console interface {
	Execute(command string) (string, error)
}

const (
	DefaultTimeout = 3 * time.Second
	DefaultRetries = 3
)

// Client speaks the Source remote-console protocol with bounded retries.
// Each Execute dials a fresh connection; game servers drop idle consoles
// aggressively enough that pooling is not worth it.
type Client struct {
	Addr     string
	Password string
	Timeout  time.Duration
	Retries  int
}

func NewClient(addr, password string) *Client {
	return &Client{
		Addr:     addr,
		Password: password,
		Timeout:  DefaultTimeout,
		Retries:  DefaultRetries,
	}
}

// WithLimits overrides the retry count and per-attempt timeout.
func (c *Client) WithLimits(retries int, timeout time.Duration) *Client {
	c.Retries = retries
	c.Timeout = timeout
	return c
}

func (c *Client) Execute(command string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.Retries; attempt++ {
		response, err := c.executeOnce(command)
		if err == nil {
			return response, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("rcon %s: %w", c.Addr, lastErr)
}

func (c *Client) executeOnce(command string) (string, error) {
	conn, err := gorcon.Dial(c.Addr, c.Password,
		gorcon.SetDialTimeout(c.Timeout),
		gorcon.SetDeadline(c.Timeout))
	if err != nil {
		return "", err
	}
	defer conn.Close()

	response, err := conn.Execute(command)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}
