package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-engine/internal/orchestrator"
	"terraform-engine/internal/simstate"
)

func newTestClient() *Client {
	return &Client{send: make(chan []byte, 16)}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient()
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubSnapshotCopiesWaterGrid(t *testing.T) {
	hub := NewHub()
	s := simstate.New(2, 2, 1)
	s.SetWater(0, 0, 5)
	s.SetWater(1, 1, 3)

	snap := hub.Snapshot(s)
	require.Equal(t, []int32{5, 0, 0, 3}, snap.WaterGrid)

	// Mutating the source grid must not affect the already-taken snapshot.
	s.SetWater(0, 0, 99)
	assert.Equal(t, int32(5), snap.WaterGrid[0])
}

func TestHubBroadcastTickSendsOnlyChangedCells(t *testing.T) {
	hub := NewHub()
	s := simstate.New(2, 2, 1)

	client := newTestClient()
	hub.clients[client] = struct{}{}

	hub.BroadcastTick(s, orchestrator.StepResult{Tick: 1})
	select {
	case <-client.send:
		t.Fatal("expected no broadcast when nothing changed")
	default:
	}

	s.SetWater(1, 0, 7)
	hub.BroadcastTick(s, orchestrator.StepResult{Tick: 2})

	select {
	case raw := <-client.send:
		var msg ServerMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageTypeDelta, msg.Type)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for delta broadcast")
	}
}
