package net

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkBoard/internal/state"
)

type inbox struct {
	mu  sync.Mutex
	ops []state.Op
}

func (b *inbox) add(op state.Op) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op)
}

func (b *inbox) get() []state.Op {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]state.Op(nil), b.ops...)
}

func startHub(t *testing.T, snapshot func() []state.Op) (*Hub, *inbox, string) {
	t.Helper()
	host := &inbox{}
	hub := NewHub(host.add, snapshot)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, host, "ws" + strings.TrimPrefix(srv.URL, "http") + Path
}

func join(t *testing.T, url string) (*Client, *inbox) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	require.NoError(t, err)
	got := &inbox{}
	go c.Listen(got.add)
	t.Cleanup(func() { c.Close() })
	return c, got
}

func op(site string, lamport uint64) state.Op {
	return state.Op{Type: state.OpDeleteStroke, Targets: []string{"x"}, Site: site, Lamport: lamport}
}

func TestHubRelaysPeerOps(t *testing.T) {
	hub, host, url := startHub(t, nil)
	a, fromA := join(t, url)
	_, fromB := join(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, a.Send(op("a", 1)))

	require.Eventually(t, func() bool { return len(host.get()) == 1 }, 5*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(fromB.get()) == 1 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, op("a", 1), host.get()[0])
	assert.Equal(t, op("a", 1), fromB.get()[0])
	assert.Never(t, func() bool { return len(fromA.get()) > 0 }, 50*time.Millisecond, 5*time.Millisecond,
		"ops are not echoed to their sender")
}

func TestHubBroadcastAndSnapshot(t *testing.T) {
	rec := state.Record{ID: "0b1c9e3e-3f7a-4d4e-9a55-3f0d9cf1b1aa", Points: []state.Point{{X: 1, Y: 2, Pressure: 1}}, Color: "#000000"}
	snap := []state.Op{{Type: state.OpInsertStroke, Stroke: &rec, Site: "host", Lamport: 1}}
	hub, _, url := startHub(t, func() []state.Op { return snap })

	_, got := join(t, url)
	require.Eventually(t, func() bool { return len(got.get()) == 1 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, snap, got.get())

	hub.Broadcast(op("host", 2))
	require.Eventually(t, func() bool { return len(got.get()) == 2 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, op("host", 2), got.get()[1])
}

func TestLateJoinerGetsWholeSnapshot(t *testing.T) {
	snap := make([]state.Op, sendBuffer+44)
	for i := range snap {
		snap[i] = op("host", uint64(i+1))
	}
	hub, _, url := startHub(t, func() []state.Op { return snap })

	_, got := join(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 5*time.Second, 5*time.Millisecond)
	// live traffic right behind the snapshot must not push the peer out
	live := op("host", uint64(len(snap)+1))
	hub.Broadcast(live)

	require.Eventually(t, func() bool { return len(got.get()) == len(snap)+1 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, append(snap, live), got.get())
	assert.Equal(t, 1, hub.Len())
}

func TestHubForgetsClosedPeers(t *testing.T) {
	hub, _, url := startHub(t, nil)
	c, _ := join(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return hub.Len() == 0 }, 5*time.Second, 5*time.Millisecond)
}

func TestListenEndsWhenHostCloses(t *testing.T) {
	hub, _, url := startHub(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	require.NoError(t, err)
	defer c.Close()
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 5*time.Second, 5*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- c.Listen(func(state.Op) {}) }()
	hub.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return")
	}
}

func TestWebSocketURL(t *testing.T) {
	assert.Equal(t, "ws://10.0.0.2:8888/ws", WebSocketURL("inkboard://10.0.0.2:8888/"))
	assert.Equal(t, "ws://10.0.0.2:8888/ws", WebSocketURL(" 10.0.0.2:8888"))
	assert.Equal(t, "wss://example.org/ws", WebSocketURL("wss://example.org/ws"))
	assert.Equal(t, "inkboard://10.0.0.2:8888", ShareLink("10.0.0.2", 8888))
}

func TestEntryAddr(t *testing.T) {
	_, ok := entryAddr(nil)
	assert.False(t, ok)
	_, ok = entryAddr(&mdns.ServiceEntry{Port: 8888})
	assert.False(t, ok)

	addr, ok := entryAddr(&mdns.ServiceEntry{AddrV4: []byte{192, 168, 1, 20}, Port: 8888})
	require.True(t, ok)
	assert.Equal(t, "192.168.1.20:8888", addr)
}
