/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Live play over websockets.
//
// Every browser is identified by a cookie and gets its own hub, shared by
// all of that browser's open tabs. A "play" message computes the result up
// front and hands the animation timeline to a single scheduler goroutine,
// which streams letters, count, removals and the result back to the tabs.
// Starting a new play stops the one in progress. Once a timeline completes
// the session is saved, and the play is added to history when requested.
//
// A "restore" redraws a past play for the requesting tab only, all at once,
// and never touches the hub's running timeline or the stored state.

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/flames/games"
	"github.com/Seednode/flames/storage"
)

// Messages coming from clients
type ClientMessage struct {
	Type   string `json:"type"`             // "play", "restore", "cancel", "reset"
	Name1  string `json:"name1,omitempty"`  // play, restore
	Name2  string `json:"name2,omitempty"`  // play, restore
	Record bool   `json:"record,omitempty"` // play: add to history when done
}

// SimpleMessage is for generic notifications ("error", "cancelled").
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionInfoMessage is sent immediately on connect so the client can
// restore its last play, history and toggles.
type SessionInfoMessage struct {
	Type    string           `json:"type"` // "session_info"
	Prefs   storage.Prefs    `json:"prefs"`
	Session *storage.Session `json:"session,omitempty"`
	History []storage.Record `json:"history"`
}

// HistoryMessage pushes the updated history after a recorded play.
type HistoryMessage struct {
	Type    string           `json:"type"` // "history"
	History []storage.Record `json:"history"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

type playRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id     string
	keeper *storage.Keeper

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	plays    chan playRequest

	ctx  context.Context
	quit context.CancelFunc

	mu         sync.RWMutex
	lastActive time.Time

	// owned by run
	stop    context.CancelFunc
	stopped chan struct{}
	// closed just before the result is sent
	done chan struct{}
}

func newHub(clientID string, keeper *storage.Keeper) *Hub {
	ctx, quit := context.WithCancel(context.Background())

	return &Hub{
		id:         clientID,
		keeper:     keeper,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		plays:      make(chan playRequest),
		ctx:        ctx,
		quit:       quit,
		lastActive: time.Now(),
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case <-h.ctx.Done():
			h.stopTimeline()

			return

		case c := <-h.register:
			h.touch()

			info := h.sessionInfo(cfg)

			h.mu.Lock()
			h.clients[c] = true
			h.sendLocked(c, info)
			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case pr := <-h.plays:
			h.touch()

			switch pr.msg.Type {
			case "play":
				h.handlePlay(cfg, pr)
			case "restore":
				h.handleRestore(pr)
			case "cancel":
				if h.stopTimeline() {
					h.broadcast(SimpleMessage{Type: "cancelled", Message: "Play cancelled."})
				}
			case "reset":
				if h.stopTimeline() {
					h.broadcast(SimpleMessage{Type: "cancelled", Message: "Play cancelled."})
				}
				if err := h.keeper.ClearSession(h.ctx, h.id); err != nil {
					errorf("STORE: clear session for %s: %v", h.id, err)
				} else {
					logf(cfg, "STORE: Cleared session for %s", h.id)
				}
			}
		}
	}
}

func (h *Hub) sessionInfo(cfg *Config) SessionInfoMessage {
	info := SessionInfoMessage{
		Type:    "session_info",
		Prefs:   storage.DefaultPrefs(),
		History: []storage.Record{},
	}

	p, err := h.keeper.Prefs(h.ctx, h.id)
	if err != nil {
		errorf("STORE: load prefs for %s: %v", h.id, err)
	} else {
		info.Prefs = p
	}

	s, err := h.keeper.LoadSession(h.ctx, h.id)
	if err != nil {
		logf(cfg, "STORE: Dropping unreadable session for %s: %v", h.id, err)
	} else {
		info.Session = s
	}

	hist, err := h.keeper.History(h.ctx, h.id)
	if err != nil {
		errorf("STORE: load history for %s: %v", h.id, err)
	} else {
		info.History = hist
	}

	return info
}

// sendLocked queues msg for c, dropping c if its buffer is full.
// h.mu must be held for writing.
func (h *Hub) sendLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.sendLocked(c, msg)
	}
}

// stopTimeline cancels the running timeline, if any, and waits for its
// goroutine to exit. It reports whether the timeline was stopped before
// its result went out.
func (h *Hub) stopTimeline() bool {
	if h.stop == nil {
		return false
	}

	running := true
	select {
	case <-h.done:
		running = false
	default:
	}

	h.stop()
	<-h.stopped

	h.stop = nil
	h.stopped = nil
	h.done = nil

	return running
}

// handleRestore sends the whole timeline for a past play to the requesting
// client without delays.
func (h *Hub) handleRestore(pr playRequest) {
	name1 := strings.TrimSpace(pr.msg.Name1)
	name2 := strings.TrimSpace(pr.msg.Name2)

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[pr.client] {
		return
	}

	if name1 == "" || name2 == "" {
		h.sendLocked(pr.client, SimpleMessage{Type: "error", Message: "Please enter both names."})

		return
	}

	for _, t := range newTimeline(games.Play(name1, name2), 0) {
		if !h.clients[pr.client] {
			return
		}
		h.sendLocked(pr.client, t.Msg)
	}
}

// handlePlay validates the names, replaces any running timeline, and
// starts the scheduler for the new one.
func (h *Hub) handlePlay(cfg *Config, pr playRequest) {
	name1 := strings.TrimSpace(pr.msg.Name1)
	name2 := strings.TrimSpace(pr.msg.Name2)

	if name1 == "" || name2 == "" {
		h.mu.Lock()
		if h.clients[pr.client] {
			h.sendLocked(pr.client, SimpleMessage{
				Type:    "error",
				Message: "Please enter both names.",
			})
		}
		h.mu.Unlock()

		return
	}

	h.stopTimeline()

	result := games.Play(name1, name2)
	tl := newTimeline(result, cfg.stepDelay)

	logf(cfg, "PLAY: %q & %q → %s (count %d) for %s", name1, name2, result.ResultText(), result.Count, h.id)

	ctx, cancel := context.WithCancel(h.ctx)
	stopped := make(chan struct{})
	done := make(chan struct{})

	h.stop = cancel
	h.stopped = stopped
	h.done = done

	emit := func(msg any) {
		if _, ok := msg.(ResultMessage); ok {
			close(done)
		}
		h.broadcast(msg)
	}

	go func() {
		defer close(stopped)

		if err := runTimeline(ctx, tl, emit); err != nil {
			return
		}

		h.finish(cfg, result, pr.msg.Record)
	}()
}

// finish persists a completed play.
func (h *Hub) finish(cfg *Config, result games.Result, record bool) {
	now := time.Now()

	if err := h.keeper.SaveSession(h.ctx, h.id, storage.NewSession(result, now)); err != nil {
		errorf("STORE: save session for %s: %v", h.id, err)
	}

	if !record {
		return
	}

	hist, err := h.keeper.AddHistory(h.ctx, h.id, storage.NewRecord(result, now))
	if err != nil {
		errorf("STORE: add history for %s: %v", h.id, err)

		return
	}

	logf(cfg, "STORE: Added history entry for %s (%d kept)", h.id, len(hist))

	h.broadcast(HistoryMessage{Type: "history", History: hist})
}

// closeAll disconnects all clients of this hub and stops its loop.
func (h *Hub) closeAll() {
	h.quit()

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) idle(cutoff time.Time) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients) == 0 && h.lastActive.Before(cutoff)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const clientCookieName = "flames_id"

func getOrSetClientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookieName); err == nil && validClientID(c.Value) {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		errorf("rand.Read: %v", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
	})

	return id
}

// validClientID accepts only ids this server could have issued, since the
// id becomes part of every storage key.
func validClientID(id string) bool {
	if len(id) != 32 {
		return false
	}

	_, err := hex.DecodeString(id)

	return err == nil
}

// PlayManager holds one hub per browser.
type PlayManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	keeper      *storage.Keeper
	idleTimeout time.Duration
}

func newPlayManager(keeper *storage.Keeper, idleTimeout time.Duration) *PlayManager {
	return &PlayManager{
		hubs:        make(map[string]*Hub),
		keeper:      keeper,
		idleTimeout: idleTimeout,
	}
}

func (pm *PlayManager) getHub(cfg *Config, clientID string) *Hub {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if hub, ok := pm.hubs[clientID]; ok {
		return hub
	}

	hub := newHub(clientID, pm.keeper)
	pm.hubs[clientID] = hub
	go hub.run(cfg)
	return hub
}

// reap removes hubs with no connected clients that have been idle longer
// than idleTimeout, returning how many were removed.
func (pm *PlayManager) reap(now time.Time) int {
	cutoff := now.Add(-pm.idleTimeout)
	n := 0

	pm.mu.Lock()
	defer pm.mu.Unlock()

	for id, hub := range pm.hubs {
		if hub.idle(cutoff) {
			delete(pm.hubs, id)
			go hub.closeAll()
			n++
		}
	}

	return n
}

// reaperLoop periodically reaps idle hubs until ctx is done.
func (pm *PlayManager) reaperLoop(ctx context.Context, cfg *Config) error {
	if pm.idleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(pm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pm.mu.Lock()
			for id, hub := range pm.hubs {
				delete(pm.hubs, id)
				hub.closeAll()
			}
			pm.mu.Unlock()

			return nil
		case now := <-ticker.C:
			if n := pm.reap(now); n > 0 {
				logf(cfg, "PLAY: Reaped %d idle session(s)", n)
			}
		}
	}
}

// WebSocket handler that picks the hub based on the client cookie
func serveWSForManager(cfg *Config, pm *PlayManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		clientID := getOrSetClientID(w, r)
		if clientID == "" {
			http.Error(w, "unable to assign client id", http.StatusInternalServerError)
			return
		}

		hub := pm.getHub(cfg, clientID)

		// The upgrade writes its own response, so carry a fresh cookie over.
		conn, err := upgrader.Upgrade(w, r, http.Header{"Set-Cookie": w.Header().Values("Set-Cookie")})
		if err != nil {
			logf(cfg, "PLAY: Upgrade failed for %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 32),
		}

		select {
		case hub.register <- client:
		case <-hub.ctx.Done():
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.ctx.Done():
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "play", "restore", "cancel", "reset":
			select {
			case h.plays <- playRequest{client: c, msg: msg}:
			case <-h.ctx.Done():
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func registerPlay(cfg *Config, pm *PlayManager, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/play/ws", serveWSForManager(cfg, pm))
}
