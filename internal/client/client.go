// Package client talks to a stag server: one connection per command, the
// reply read up to the end-of-transmission marker.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/dekarrin/rosed"

	"github.com/cory-johannsen/stag/internal/frontend/line"
	"github.com/cory-johannsen/stag/internal/game/command"
)

// HelpCommand is answered locally by Help instead of being sent.
const HelpCommand = "help"

// ErrNoMarker is returned when the server closes the connection before
// sending the end-of-transmission marker.
var ErrNoMarker = errors.New("response ended without end-of-transmission marker")

// Client sends commands on behalf of one player.
type Client struct {
	addr    string
	player  string
	timeout time.Duration
	dialer  net.Dialer
}

// New creates a client for player against the server at addr.
//
// Precondition: addr is "host:port"; player is a valid player name.
func New(addr, player string, timeout time.Duration) *Client {
	return &Client{addr: addr, player: player, timeout: timeout}
}

// Player returns the name commands are sent as.
func (c *Client) Player() string { return c.player }

// Send delivers one command and returns the server's reply without framing.
//
// Postcondition: Returns the reply text, or a non-nil error if the exchange
// did not complete.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("connecting to %s: %w", c.addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := fmt.Fprintf(conn, "%s: %s\n", c.player, text); err != nil {
		return "", fmt.Errorf("sending command: %w", err)
	}

	raw, err := bufio.NewReader(conn).ReadString(line.EOT)
	if err != nil {
		if strings.TrimSpace(raw) != "" {
			return "", fmt.Errorf("%w: got %q", ErrNoMarker, raw)
		}
		return "", fmt.Errorf("reading response: %w", err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(raw, string(line.EOT)), "\n"), nil
}

// Wrap reflows each line of a reply to width columns. A width of 0 leaves
// the reply unchanged.
func Wrap(reply string, width int) string {
	if width <= 0 {
		return reply
	}
	lines := strings.Split(reply, "\n")
	for i, l := range lines {
		if len(l) > width {
			lines[i] = rosed.Edit(l).Wrap(width).String()
		}
	}
	return strings.Join(lines, "\n")
}

// Help lists the built-in verbs with their aliases and help text. Custom
// actions come from the server's actions file and are not listed.
func Help() string {
	var b strings.Builder
	b.WriteString("Built-in commands:")
	for _, cmd := range command.DefaultRegistry().Commands() {
		name := cmd.Name
		if len(cmd.Aliases) > 0 {
			name += " (" + strings.Join(cmd.Aliases, ", ") + ")"
		}
		if cmd.Subjects > 0 {
			name += " <subject>"
		}
		fmt.Fprintf(&b, "\n  %-22s %s", name, cmd.Help)
	}
	return b.String()
}
