package game

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// Context is the capability surface handed to ruleset handlers. It is bound
// to one room for the duration of one message (or one deferred
// continuation) and must not be retained.
type Context struct {
	eng      *Engine
	room     *Room
	deferred []deferredCall
}

type deferredCall struct {
	delay time.Duration
	fn    func(*Context)
}

// Broadcast sends the event to every player of the room except the excluded
// ids. Players without a live session are silently skipped; that is the
// model for offline players.
func (rc *Context) Broadcast(event any, exclude ...string) {
	rc.eng.broadcast(rc.room, event, exclude...)
}

// Send delivers the event to one player only. A missing session is not an
// error.
func (rc *Context) Send(playerID string, event any) {
	rc.eng.sendTo(playerID, event)
}

// Reject writes the event straight to the player's connection and closes
// it. Used for joins refused before the player gets a seat.
func (rc *Context) Reject(playerID string, event any, reason string) {
	rc.eng.rejectSession(playerID, event, reason)
}

// Rand is the engine's seeded random source. Only call while the engine is
// dispatching into the ruleset.
func (rc *Context) Rand() *rand.Rand {
	return rc.eng.rng
}

// After schedules fn to run once the current handler has finished and the
// delay has elapsed. The room's message queue stays blocked until fn has
// run, so no message for this room can observe the intermediate state;
// other rooms proceed freely. State is persisted after fn returns.
func (rc *Context) After(delay time.Duration, fn func(*Context)) {
	rc.deferred = append(rc.deferred, deferredCall{delay: delay, fn: fn})
}

// Drop records a silently-dropped message. With debug_drops enabled the
// sender receives a diagnostic event; otherwise this is a no-op.
func (rc *Context) Drop(playerID, reason string) {
	rc.eng.debugDrop(playerID, reason)
}

func (rc *Context) Log() *zerolog.Logger {
	return &rc.eng.log
}

func (rc *Context) takeDeferred() []deferredCall {
	d := rc.deferred
	rc.deferred = nil
	return d
}
