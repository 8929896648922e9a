package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/battlehub/internal/battle/codec"
	"github.com/nfrund/battlehub/internal/battle/transport"
)

func TestBridge_HandlerUpgradesAndRoundTripsFrames(t *testing.T) {
	b := NewBridge()
	accepted := make(chan *Conn, 1)

	srv := httptest.NewServer(b.Handler(func(c *Conn) { accepted <- c }))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.Dial(context.Background(), wsURL, nil)
	require.NoError(t, err)
	defer client.Close(websocket.StatusNormalClosure, "")

	var server *Conn
	select {
	case server = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("bridge never accepted connection")
	}

	frame := codec.NewEncoder(byte(codec.OpBattlePokemon)).Int32(1).Finalise()
	require.True(t, server.Send(frame))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, message, err := client.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, frame, message)

	err = client.Write(context.Background(), websocket.MessageBinary, transport.EncodeCancelOrder())
	require.NoError(t, err)

	select {
	case cf := <-b.Incoming():
		assert.Equal(t, transport.OpCancelOrder, cf.Opcode)
	case <-time.After(time.Second):
		t.Fatal("no client frame arrived")
	}

	server.Close()
}

func TestConn_SendDropsOnFullQueue(t *testing.T) {
	c := &Conn{id: "x", send: make(chan []byte, 1)}
	assert.True(t, c.Send([]byte{1}))
	assert.False(t, c.Send([]byte{2}))
}
