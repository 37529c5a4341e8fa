package testutil

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// LineClient is a test client for the one-command-per-connection line server.
type LineClient struct {
	conn   net.Conn
	reader *bufio.Reader
	t      *testing.T
}

// NewLineClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected LineClient or fails the test.
func NewLineClient(t *testing.T, addr string) *LineClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}

	t.Cleanup(func() {
		conn.Close()
	})

	t.Logf("line client connected to %s [%s]", addr, time.Since(start))
	return &LineClient{
		conn:   conn,
		reader: bufio.NewReader(conn),
		t:      t,
	}
}

// Send writes a line of text to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
// Postcondition: text + \r\n is written to the connection.
func (c *LineClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// ReadResponse reads until the end-of-transmission byte and returns the
// response text without its framing.
//
// Postcondition: Returns the response body, or fails the test on timeout.
func (c *LineClient) ReadResponse(timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	raw, err := c.reader.ReadString(0x04)
	if err != nil {
		c.t.Fatalf("reading response: got %q, error: %v", raw, err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(raw, "\x04"), "\n")
}

// Close closes the underlying connection.
func (c *LineClient) Close() {
	c.conn.Close()
}

// Exchange sends one command on a fresh connection and returns the response.
//
// Postcondition: Returns the response body, or fails the test.
func Exchange(t *testing.T, addr, text string) string {
	t.Helper()
	c := NewLineClient(t, addr)
	defer c.Close()
	c.Send(text)
	return c.ReadResponse(5 * time.Second)
}
