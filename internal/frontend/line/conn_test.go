package line

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, time.Second, time.Second), client
}

func TestReadLine_StripsCRLFAndControls(t *testing.T) {
	conn, client := pipeConn(t)
	go func() { _, _ = client.Write([]byte("simon: lo\x07ok\x04\r\n")) }()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "simon: look", line)
}

func TestReadLine_KeepsTabs(t *testing.T) {
	conn, client := pipeConn(t)
	go func() { _, _ = client.Write([]byte("simon:\tlook\n")) }()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "simon:\tlook", line)
}

func TestReadLine_UnterminatedReturnsEOF(t *testing.T) {
	conn, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("simon: inv"))
		client.Close()
	}()

	line, err := conn.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "simon: inv", line)
}

func TestWriteResponse_Framing(t *testing.T) {
	conn, client := pipeConn(t)
	got := make(chan []byte, 1)
	go func() {
		b, _ := io.ReadAll(client)
		got <- b
	}()

	require.NoError(t, conn.WriteResponse("You are in a cabin"))
	require.NoError(t, conn.Close())
	assert.Equal(t, []byte("You are in a cabin\n\x04\n"), <-got)
}

func TestProperty_ReadLineNeverReturnsControlBytes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(rt, "payload")
		server, client := net.Pipe()
		defer server.Close()
		defer client.Close()
		conn := NewConn(server, time.Second, time.Second)

		go func() {
			for _, b := range payload {
				if b == '\n' {
					continue
				}
				_, _ = client.Write([]byte{b})
			}
			_, _ = client.Write([]byte{'\n'})
		}()

		line, err := conn.ReadLine()
		if err != nil {
			rt.Fatalf("ReadLine: %v", err)
		}
		for i := 0; i < len(line); i++ {
			if (line[i] < 32 && line[i] != '\t') || line[i] == 127 {
				rt.Fatalf("control byte %#x at %d in %q", line[i], i, line)
			}
		}
	})
}
