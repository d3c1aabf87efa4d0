package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBufferedClient builds a client with no websocket and no writer, so the
// send semantics can be observed directly from the channels.
func newBufferedClient(sendCap, controlCap int) *Client {
	return &Client{
		id:      uuid.NewString(),
		send:    make(chan []byte, sendCap),
		control: make(chan []byte, controlCap),
		closed:  make(chan struct{}),
	}
}

func TestSendDropsOnlyStateTrafficUnderBackpressure(t *testing.T) {
	c := newBufferedClient(1, controlBufferSize)

	// First frame fits, second is dropped, as is a stale paddle relay.
	assert.True(t, c.Send(ServerEvent{Type: EvtGameState}))
	assert.False(t, c.Send(ServerEvent{Type: EvtGameState}))
	assert.False(t, c.Send(ServerEvent{Type: EvtOpponentPaddleMove, Data: OpponentPaddleMoveData{X: 1}}))

	// Lifecycle events still go through while the frame buffer is full.
	assert.True(t, c.Send(ServerEvent{Type: EvtScoreUpdate, Data: ScoreUpdateData{Player1Score: 1}}))
	assert.True(t, c.Send(ServerEvent{Type: EvtGameEnd, Data: GameEndData{WinnerID: 1}}))

	require.Len(t, c.control, 2)
	var evt struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(<-c.control, &evt))
	assert.Equal(t, EvtScoreUpdate, evt.Type)
	require.NoError(t, json.Unmarshal(<-c.control, &evt))
	assert.Equal(t, EvtGameEnd, evt.Type)
}

func TestLifecycleSendUnblocksWhenClientCloses(t *testing.T) {
	c := newBufferedClient(sendBufferSize, 1)
	require.True(t, c.Send(ServerEvent{Type: EvtScoreUpdate}))

	result := make(chan bool, 1)
	go func() { result <- c.Send(ServerEvent{Type: EvtGameEnd}) }()

	select {
	case <-result:
		t.Fatal("send returned while the control buffer was full")
	case <-time.After(20 * time.Millisecond):
	}

	close(c.closed)
	select {
	case ok := <-result:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send did not unblock after close")
	}
}

func TestSendReportsFalseAfterClose(t *testing.T) {
	c := newBufferedClient(sendBufferSize, controlBufferSize)
	close(c.closed)

	assert.False(t, c.Send(ServerEvent{Type: EvtGameState}))
	assert.False(t, c.Send(ServerEvent{Type: EvtGameEnd}))
	assert.Empty(t, c.send)
	assert.Empty(t, c.control)
}
