package line

import (
	"bufio"
	"bytes"
	"net"
	"time"
)

// EOT is written after every response to mark the end of transmission.
const EOT byte = 0x04

// maxLineLength bounds a single command line.
const maxLineLength = 4096

// Conn wraps a TCP connection with the one-line request, framed response protocol.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, maxLineLength),
		writer:       bufio.NewWriter(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ReadLine reads a single line of input. The trailing \r\n and any other
// control characters except tab are removed, including framing bytes.
// Input beyond maxLineLength is discarded.
//
// Postcondition: Returns the line text, or an error (including io.EOF) if no
// newline arrived. A final unterminated line is returned with its error.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		if b == '\n' {
			break
		}
		// Filter control characters except tab
		if b < 32 && b != '\t' || b == 127 {
			continue
		}
		if line.Len() < maxLineLength {
			line.WriteByte(b)
		}
	}

	return line.String(), nil
}

// WriteResponse sends text, a newline, the EOT byte and a final newline,
// then flushes.
//
// Postcondition: The framed response is written to the connection.
func (c *Conn) WriteResponse(text string) error {
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if _, err := c.writer.WriteString(text); err != nil {
		return err
	}
	if _, err := c.writer.Write([]byte{'\n', EOT, '\n'}); err != nil {
		return err
	}
	return c.writer.Flush()
}

// Close closes the underlying TCP connection.
//
// Postcondition: The connection is closed and no longer usable.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
