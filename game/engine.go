package game

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/solaris-soft/Party-games/clock"
	"github.com/solaris-soft/Party-games/store"
)

const (
	// snapshotKeySuffix is the single key each engine instance persists
	// its whole state under, namespaced by ruleset kind.
	snapshotKeySuffix = ":gameState"

	persistTimeout = 5 * time.Second
)

// Config holds the collaborators of one Engine.
type Config struct {
	Ruleset Ruleset
	Store   store.Store
	// Clock defaults to the system clock.
	Clock clock.Clock
	// Seed makes the engine's random source deterministic for tests;
	// zero seeds from the current time.
	Seed   int64
	Logger zerolog.Logger
	// DebugDrops sends a diagnostic frame to the sender of every
	// silently-dropped message.
	DebugDrops bool
}

// Engine owns the authoritative state of every room of one game variant.
// Message handling is serialized per room: each room has a FIFO work queue
// drained by at most one goroutine at a time, so handlers can read-then-act
// on room state without races, while different rooms proceed concurrently.
// The state snapshot is persisted synchronously after every mutation.
type Engine struct {
	rs         Ruleset
	store      store.Store
	clk        clock.Clock
	log        zerolog.Logger
	debugDrops bool
	stateKey   string

	mu       sync.Mutex
	rng      *rand.Rand
	rooms    map[string]*Room
	restored bool

	sessMu   sync.RWMutex
	sessions map[string]*session

	workMu  sync.Mutex
	workers map[string]*roomQueue
}

type roomQueue struct {
	items   []workItem
	running bool
}

type workItem struct {
	playerID   string
	data       []byte
	disconnect bool
	sess       *session
}

// persistedState is the snapshot layout: every room of the instance under
// one key, full overwrite, last writer wins.
type persistedState struct {
	Rooms []*Room `json:"rooms"`
}

type rawRoom struct {
	ID      string          `json:"id"`
	Players *Roster         `json:"players"`
	Game    json.RawMessage `json:"game"`
}

func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil || cfg.Ruleset == nil {
		return nil, errors.New("ruleset cannot be nil")
	}
	if cfg.Store == nil {
		return nil, errors.New("store cannot be nil")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		rs:         cfg.Ruleset,
		store:      cfg.Store,
		clk:        clk,
		log:        cfg.Logger.With().Str("game", cfg.Ruleset.Kind()).Logger(),
		debugDrops: cfg.DebugDrops,
		stateKey:   cfg.Ruleset.Kind() + snapshotKeySuffix,
		rng:        rand.New(rand.NewSource(seed)),
		rooms:      make(map[string]*Room),
		sessions:   make(map[string]*session),
		workers:    make(map[string]*roomQueue),
	}, nil
}

func (e *Engine) Kind() string {
	return e.rs.Kind()
}

// AcceptConnection registers the channel under playerID and starts
// consuming messages from it. The caller has already validated that both
// ids are present.
func (e *Engine) AcceptConnection(roomID, playerID string, conn Conn) {
	sess := newSession(playerID, conn)

	e.sessMu.Lock()
	if old, ok := e.sessions[playerID]; ok {
		old.close("replaced by new connection")
	}
	e.sessions[playerID] = sess
	e.sessMu.Unlock()

	e.log.Info().Str("room", roomID).Str("player", playerID).Msg("connection accepted")

	go sess.writePump()
	go e.readLoop(roomID, sess)
}

func (e *Engine) readLoop(roomID string, sess *session) {
	for {
		data, err := sess.conn.Read()
		if err != nil {
			break
		}
		if !sess.limiter.Allow() {
			continue
		}
		e.enqueue(roomID, workItem{playerID: sess.playerID, data: data, sess: sess})
	}
	sess.close("")
	e.enqueue(roomID, workItem{playerID: sess.playerID, disconnect: true, sess: sess})
}

// enqueue appends the item to the room's FIFO queue and starts a drain
// goroutine if none is running. Per-room serialization lives here: one
// drainer per room at a time, and a narration delay inside a handler holds
// up only that room's queue.
func (e *Engine) enqueue(roomID string, item workItem) {
	e.workMu.Lock()
	q := e.workers[roomID]
	if q == nil {
		q = &roomQueue{}
		e.workers[roomID] = q
	}
	q.items = append(q.items, item)
	if !q.running {
		q.running = true
		go e.drain(roomID, q)
	}
	e.workMu.Unlock()
}

func (e *Engine) drain(roomID string, q *roomQueue) {
	for {
		e.workMu.Lock()
		if len(q.items) == 0 {
			q.running = false
			delete(e.workers, roomID)
			e.workMu.Unlock()
			return
		}
		item := q.items[0]
		q.items = q.items[1:]
		e.workMu.Unlock()

		if item.disconnect {
			e.processDisconnect(roomID, item)
		} else {
			e.process(roomID, item.playerID, item.data)
		}
	}
}

// process handles one inbound frame to completion, including the persist
// and any deferred continuations, before the next frame for this room is
// looked at.
func (e *Engine) process(roomID, playerID string, data []byte) {
	var env struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		// A malformed payload never mutates state; the sender alone
		// hears about it.
		e.sendTo(playerID, parseError{Error: "Invalid message format"})
		return
	}

	e.mu.Lock()
	e.restoreLocked()

	rc := &Context{eng: e}
	mutated := true

	switch env.Type {
	case "join":
		mutated = e.handleJoin(rc, roomID, playerID, env.Name)
	case "ready":
		mutated = e.handleReady(rc, roomID, playerID)
	default:
		room := e.rooms[roomID]
		if room == nil {
			// Room-must-exist precondition: silent drop.
			e.mu.Unlock()
			e.debugDrop(playerID, "room not found")
			return
		}
		rc.room = room
		e.rs.OnMessage(rc, room, playerID, env.Type, data)
	}

	if mutated {
		e.persistLocked(roomID)
	}
	deferred := rc.takeDeferred()
	room := rc.room
	e.mu.Unlock()

	e.runDeferred(roomID, room, deferred)
}

// runDeferred executes scheduled continuations in order, sleeping outside
// the engine lock so only this room's queue is blocked.
func (e *Engine) runDeferred(roomID string, room *Room, deferred []deferredCall) {
	for len(deferred) > 0 {
		call := deferred[0]
		deferred = deferred[1:]

		e.clk.Sleep(call.delay)

		e.mu.Lock()
		rc := &Context{eng: e, room: room}
		call.fn(rc)
		e.persistLocked(roomID)
		deferred = append(rc.takeDeferred(), deferred...)
		e.mu.Unlock()
	}
}

func (e *Engine) processDisconnect(roomID string, item workItem) {
	e.sessMu.Lock()
	current, ok := e.sessions[item.playerID]
	stale := !ok || current != item.sess
	if !stale {
		delete(e.sessions, item.playerID)
	}
	e.sessMu.Unlock()

	// A stale disconnect means the player already reconnected on a new
	// channel; the seat stays.
	if stale {
		return
	}

	e.mu.Lock()
	e.restoreLocked()

	room := e.rooms[roomID]
	if room == nil {
		e.mu.Unlock()
		return
	}
	p, ok := room.Players.Get(item.playerID)
	if !ok {
		e.mu.Unlock()
		return
	}

	e.log.Info().Str("room", roomID).Str("player", item.playerID).Msg("player disconnected")

	rc := &Context{eng: e, room: room}
	e.rs.OnLeave(rc, room, p)

	if room.Players.Len() == 0 {
		delete(e.rooms, roomID)
		e.log.Info().Str("room", roomID).Msg("room empty, removed")
	}

	e.persistLocked(roomID)
	e.mu.Unlock()
}

// handleJoin implements the generic join flow: lazy room creation,
// reconnect re-attachment, optional duplicate-name rejection, seat
// creation, roster sync, then the ruleset's announce policy.
func (e *Engine) handleJoin(rc *Context, roomID, playerID, name string) bool {
	if name == "" {
		e.sendTo(playerID, parseError{Error: "Missing name"})
		return false
	}

	room := e.rooms[roomID]
	if room == nil {
		room = &Room{
			ID:      roomID,
			Players: NewRoster(),
			Game:    e.rs.NewGame(),
		}
		e.rooms[roomID] = room
		e.log.Info().Str("room", roomID).Msg("room created")
	}
	rc.room = room

	if p, ok := room.Players.Get(playerID); ok {
		// Same player id on a fresh channel: re-attach instead of
		// seating a duplicate.
		p.Disconnected = false
		rc.Send(playerID, gameStateEvent{
			Type:    "game_state",
			Players: room.Players.Players(),
			Game:    room.Game,
		})
		rc.Broadcast(playerReconnectedEvent{Type: "player_reconnected", PlayerID: playerID})
		return true
	}

	if e.rs.RejectsDuplicateName() {
		for _, existing := range room.Players.Players() {
			if existing.Name == name {
				rc.Reject(playerID, newErrorEvent("name_exists"), "Duplicate name")
				return false
			}
		}
	}

	p := e.rs.NewPlayer(playerID, name)
	room.Players.Add(p)
	e.log.Info().Str("room", roomID).Str("player", playerID).Str("name", name).Msg("player joined")

	rc.Send(playerID, newPlayersList(room))
	e.rs.OnJoin(rc, room, p)
	return true
}

// handleReady marks the player ready and fires the ruleset's round start
// when every player is ready and the game is still waiting. The phase check
// keeps a mid-game ready flip from re-triggering the start.
func (e *Engine) handleReady(rc *Context, roomID, playerID string) bool {
	room := e.rooms[roomID]
	if room == nil {
		e.debugDrop(playerID, "room not found")
		return false
	}
	p, ok := room.Players.Get(playerID)
	if !ok {
		e.debugDrop(playerID, "player not in room")
		return false
	}
	rc.room = room

	p.Ready = true
	rc.Broadcast(playerReadyEvent{Type: "player_ready", PlayerID: playerID})

	if room.Game.CurrentPhase() == phaseWaiting && allReady(room) {
		e.rs.StartRound(rc, room)
	}
	return true
}

func allReady(room *Room) bool {
	for _, p := range room.Players.Players() {
		if !p.Ready {
			return false
		}
	}
	return true
}

// restoreLocked loads the snapshot on first use after a cold start. Safe to
// call any number of times; only the first does anything, so rooms are
// never duplicated. Sessions always start empty: channels cannot survive a
// restart.
func (e *Engine) restoreLocked() {
	if e.restored {
		return
	}
	e.restored = true

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	data, err := e.store.Get(ctx, e.stateKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error().Err(err).Msg("failed to restore snapshot, starting empty")
		}
		return
	}

	var raw struct {
		Rooms []rawRoom `json:"rooms"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		e.log.Error().Err(err).Msg("corrupt snapshot, starting empty")
		return
	}

	for _, rr := range raw.Rooms {
		if _, exists := e.rooms[rr.ID]; exists {
			continue
		}
		g := e.rs.NewGame()
		if len(rr.Game) > 0 {
			if err := json.Unmarshal(rr.Game, g); err != nil {
				e.log.Error().Err(err).Str("room", rr.ID).Msg("corrupt room payload, skipping")
				continue
			}
		}
		players := rr.Players
		if players == nil {
			players = NewRoster()
		}
		e.rooms[rr.ID] = &Room{ID: rr.ID, Players: players, Game: g}
	}

	e.log.Info().Int("rooms", len(e.rooms)).Msg("snapshot restored")
}

// persistLocked writes the full state synchronously. A failure is logged
// and otherwise swallowed: the in-memory state stays authoritative and the
// next mutation retries the write.
func (e *Engine) persistLocked(roomID string) {
	rooms := make([]*Room, 0, len(e.rooms))
	for _, room := range e.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	data, err := json.Marshal(persistedState{Rooms: rooms})
	if err != nil {
		e.log.Error().Err(err).Str("room", roomID).Msg("failed to marshal snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := e.store.Put(ctx, e.stateKey, data); err != nil {
		e.log.Error().Err(err).Str("room", roomID).Msg("failed to persist snapshot")
	}
}

func (e *Engine) broadcast(room *Room, event any, exclude ...string) {
	if room == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		e.log.Error().Err(err).Str("room", room.ID).Msg("failed to marshal event")
		return
	}

	e.sessMu.RLock()
	defer e.sessMu.RUnlock()

outer:
	for _, p := range room.Players.Players() {
		for _, id := range exclude {
			if p.ID == id {
				continue outer
			}
		}
		if sess, ok := e.sessions[p.ID]; ok {
			if !sess.send(data) {
				e.log.Warn().Str("room", room.ID).Str("player", p.ID).Msg("outbox full, frame dropped")
			}
		}
	}
}

func (e *Engine) sendTo(playerID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		e.log.Error().Err(err).Str("player", playerID).Msg("failed to marshal event")
		return
	}
	e.sessMu.RLock()
	sess, ok := e.sessions[playerID]
	e.sessMu.RUnlock()
	if ok {
		sess.send(data)
	}
}

// rejectSession writes the event straight to the socket and closes it,
// removing the session. Only used before the player holds a seat, so the
// write pump has nothing in flight.
func (e *Engine) rejectSession(playerID string, event any, reason string) {
	e.sessMu.Lock()
	sess, ok := e.sessions[playerID]
	if ok {
		delete(e.sessions, playerID)
	}
	e.sessMu.Unlock()
	if !ok {
		return
	}

	if data, err := json.Marshal(event); err == nil {
		sess.conn.Write(data)
	}
	sess.close(reason)
}

func (e *Engine) debugDrop(playerID, reason string) {
	if !e.debugDrops {
		return
	}
	e.sendTo(playerID, debugDropEvent{Type: "debug_drop", Reason: reason})
}
