package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"InkBoard/internal/state"
)

const (
	// LinkScheme prefixes the share links handed out by a host.
	LinkScheme = "inkboard://"
	// Path is where the host accepts peers.
	Path = "/ws"

	sendBuffer   = 256
	writeTimeout = 5 * time.Second
)

// Hub is run by the HOST. Every op a peer sends is handed to OnOp and relayed
// to all other peers.
type Hub struct {
	upgrader websocket.Upgrader
	onOp     func(state.Op)
	snapshot func() []state.Op

	mu     sync.RWMutex
	peers  map[*peer]struct{}
	closed bool
	wg     sync.WaitGroup
}

type peer struct {
	conn *websocket.Conn
	addr string
	send chan state.Op
	once sync.Once
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.send)
	})
}

// NewHub returns a hub handing peer ops to onOp. snapshot, if set, provides
// the ops replayed to a peer that just joined so it starts with the current
// board.
func NewHub(onOp func(state.Op), snapshot func() []state.Op) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		onOp:     onOp,
		snapshot: snapshot,
		peers:    make(map[*peer]struct{}),
	}
}

// Handler serves the hub at Path.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	return mux
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger().Warn("[NET] upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	// the snapshot is queued before the peer can see any live op, with
	// sendBuffer slots left over for live traffic
	var snap []state.Op
	if h.snapshot != nil {
		snap = h.snapshot()
	}
	p := &peer{conn: conn, addr: r.RemoteAddr, send: make(chan state.Op, len(snap)+sendBuffer)}
	for _, op := range snap {
		p.send <- op
	}
	h.peers[p] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()
	logger().Info("[NET] peer connected", "remote", p.addr, "snapshot", len(snap))

	go h.writeLoop(p)
	h.readLoop(p)
}

func (h *Hub) readLoop(p *peer) {
	defer h.wg.Done()
	defer h.remove(p)
	for {
		var op state.Op
		if err := p.conn.ReadJSON(&op); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger().Info("[NET] peer disconnected", "remote", p.addr, "err", err)
			}
			return
		}
		logger().Debug("[NET] op received", "type", op.Type, "remote", p.addr)
		h.relay(op, p)
		if h.onOp != nil {
			h.onOp(op)
		}
	}
}

func (h *Hub) writeLoop(p *peer) {
	defer p.conn.Close()
	for op := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := p.conn.WriteJSON(op); err != nil {
			logger().Warn("[NET] send failed", "remote", p.addr, "err", err)
			h.remove(p)
			return
		}
	}
	p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	if ok {
		p.close()
		p.conn.Close()
		logger().Debug("[NET] peer removed", "remote", p.addr)
	}
}

// Broadcast sends op to every peer. It is used for the host's own ops.
func (h *Hub) Broadcast(op state.Op) { h.relay(op, nil) }

func (h *Hub) relay(op state.Op, from *peer) {
	h.mu.RLock()
	var slow []*peer
	for p := range h.peers {
		if p == from {
			continue
		}
		select {
		case p.send <- op:
		default:
			slow = append(slow, p)
		}
	}
	h.mu.RUnlock()
	for _, p := range slow {
		logger().Warn("[NET] dropping slow peer", "remote", p.addr)
		h.remove(p)
	}
}

// Len returns the number of connected peers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every peer and waits for their handlers to return.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()
	for _, p := range peers {
		h.remove(p)
	}
	h.wg.Wait()
}

// ListenAndServe runs the hub on port until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger().Info("[NET] host listening", "port", port)

	select {
	case err := <-errc:
		return fmt.Errorf("listen on port %d: %w", port, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	h.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Client is a peer's connection to a host.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Dial connects to a host. addr may be a share link, a host:port pair or a
// ws:// URL.
func Dial(ctx context.Context, addr string) (*Client, error) {
	url := WebSocketURL(addr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	logger().Info("[NET] connected to host", "url", url, "local", conn.LocalAddr().String())
	return &Client{conn: conn}, nil
}

// WebSocketURL turns a share link or host:port into the hub URL.
func WebSocketURL(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	addr = strings.TrimPrefix(addr, LinkScheme)
	addr = strings.TrimSuffix(addr, "/")
	return "ws://" + addr + Path
}

// ShareLink is the link a host hands out for ip and port.
func ShareLink(ip string, port int) string {
	return fmt.Sprintf("%s%s:%d", LinkScheme, ip, port)
}

// Send writes one op to the host. It may be called from any goroutine.
func (c *Client) Send(op state.Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(op); err != nil {
		return fmt.Errorf("send %s: %w", op.Type, err)
	}
	return nil
}

// Listen hands every op from the host to onOp until the connection ends. A
// normal close returns nil.
func (c *Client) Listen(onOp func(state.Op)) error {
	for {
		var op state.Op
		if err := c.conn.ReadJSON(&op); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("listen: %w", err)
		}
		onOp(op)
	}
}

// Close says goodbye to the host and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mu.Unlock()
	return c.conn.Close()
}
