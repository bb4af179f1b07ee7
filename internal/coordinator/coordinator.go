package coordinator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cantorhq/cantor/internal/dependencies/clock"
	"github.com/cantorhq/cantor/internal/dependencies/random"
	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/services/room"
)

// ErrStopped is returned for calls made after the coordinator shut down
var ErrStopped = errors.New("coordinator stopped")

// Sender delivers a single event to a single connection. The transport layer
// implements this; delivery must not block the caller.
type Sender interface {
	Send(conn model.ConnID, ev model.Event)
}

// Deps are the injected collaborators for a Coordinator
type Deps struct {
	Clock  clock.Clock
	Random random.Random
	Sink   room.BalanceSink
	Sender Sender
	Logger *slog.Logger
}

// connState binds an open connection to its player and room
type connState struct {
	playerID model.PlayerID
	key      model.RoomKey
}

// Coordinator owns every room and serializes all room mutations through a
// single ops loop. Handlers post closures onto the loop and the loop runs
// them one at a time, so room state needs no locking and every command,
// timer callback and disconnect observes a consistent room.
type Coordinator struct {
	registry *room.Registry
	cfg      room.Config

	clock  clock.Clock
	random random.Random
	sink   room.BalanceSink
	sender Sender
	logger *slog.Logger

	ops  chan func()
	quit chan struct{}
	done chan struct{}

	// conns is loop-owned, like the rooms
	conns map[model.ConnID]connState
}

// New creates a Coordinator. Call Run to start the loop.
func New(cfg room.Config, deps Deps) *Coordinator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := deps.Sink
	if sink == nil {
		sink = room.NopSink{}
	}
	return &Coordinator{
		registry: room.NewRegistry(deps.Random),
		cfg:      cfg,
		clock:    deps.Clock,
		random:   deps.Random,
		sink:     sink,
		sender:   deps.Sender,
		logger:   logger.With(slog.String("component", "coordinator")),
		ops:      make(chan func(), 256),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		conns:    make(map[model.ConnID]connState),
	}
}

// Run drives the ops loop until Stop is called
func (c *Coordinator) Run() {
	defer close(c.done)
	for {
		select {
		case fn := <-c.ops:
			fn()
		case <-c.quit:
			// Drain anything already queued, then tear down
			for {
				select {
				case fn := <-c.ops:
					fn()
				default:
					for _, key := range c.registry.Keys() {
						c.registry.Delete(key)
					}
					return
				}
			}
		}
	}
}

// Stop shuts the loop down and waits for it to finish
func (c *Coordinator) Stop() {
	close(c.quit)
	<-c.done
}

// post queues fn onto the loop, reporting false after shutdown
func (c *Coordinator) post(fn func()) bool {
	select {
	case <-c.quit:
		return false
	case c.ops <- fn:
		return true
	}
}

// call runs fn on the loop and waits for it
func (c *Coordinator) call(ctx context.Context, fn func()) error {
	doneCh := make(chan struct{})
	if !c.post(func() {
		defer close(doneCh)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateRoom allocates a key and creates an empty room in the given mode.
// The creator becomes host when they connect.
func (c *Coordinator) CreateRoom(ctx context.Context, mode model.GameMode, creator model.PlayerID) (model.RoomKey, error) {
	if !model.ValidMode(mode) {
		return "", model.ErrInvalidMode
	}

	var key model.RoomKey
	var err error
	callErr := c.call(ctx, func() {
		key = c.registry.NewKey()

		var rm *room.Room
		rm, err = room.New(key, mode, creator, c.cfg, room.Deps{
			Clock:  c.clock,
			Random: c.random,
			Sink:   c.sink,
			Exec:   c.execFor(&rm),
			Emit:   c.emitFor(&rm),
			Logger: c.logger,
		})
		if err != nil {
			return
		}
		err = c.registry.Put(rm)
	})
	if callErr != nil {
		return "", callErr
	}
	if err != nil {
		return "", err
	}

	c.logger.Info("room created",
		slog.String("room", string(key)),
		slog.String("mode", string(mode)))
	return key, nil
}

// execFor builds a room's loop re-entry hook for timer callbacks. Rooms can
// close themselves inside deferred work (last player's grace expiring), so
// every re-entry ends with a registry sweep for the room.
func (c *Coordinator) execFor(rm **room.Room) func(func()) {
	return func(fn func()) {
		c.post(func() {
			fn()
			c.reap(*rm)
		})
	}
}

// emitFor builds a room's event fan-out: targeted events go to their
// connection, broadcasts go to every connected member
func (c *Coordinator) emitFor(rm **room.Room) func([]model.Event) {
	return func(events []model.Event) {
		for _, ev := range events {
			if ev.Targeted() {
				c.sender.Send(ev.To, ev)
				continue
			}
			for _, rec := range (*rm).Directory().Records() {
				if rec.Connected() {
					c.sender.Send(rec.Conn, ev)
				}
			}
		}
	}
}

// reap drops a closed room from the registry
func (c *Coordinator) reap(rm *room.Room) {
	if rm != nil && rm.Closed() {
		c.registry.Delete(rm.Key())
	}
}

// HandleConnect seats a connection in a room. balance is the player's
// persisted balance, read by the transport layer before posting so the loop
// never waits on storage. Unknown keys get an error event and the caller
// should close the connection.
func (c *Coordinator) HandleConnect(conn model.ConnID, key model.RoomKey, playerID model.PlayerID, displayName string, balance int) {
	c.post(func() {
		rm, err := c.registry.Get(key)
		if err != nil {
			c.sendError(conn, err)
			return
		}
		c.conns[conn] = connState{playerID: playerID, key: key}
		rm.Join(playerID, conn, displayName, balance)
	})
}

// HandleDisconnect reacts to a closed connection: the player's record goes
// into its disconnect grace window rather than leaving immediately
func (c *Coordinator) HandleDisconnect(conn model.ConnID) {
	c.post(func() {
		state, ok := c.conns[conn]
		if !ok {
			return
		}
		delete(c.conns, conn)

		rm, err := c.registry.Get(state.key)
		if err != nil {
			return
		}
		rm.Disconnect(conn)
		c.reap(rm)
	})
}

// HandleCommand routes a parsed command from a connection to its room.
// Rejections come back to the sender as error events; commands from
// connections that never joined a room are dropped.
func (c *Coordinator) HandleCommand(conn model.ConnID, cmd model.Command) {
	c.post(func() {
		state, ok := c.conns[conn]
		if !ok {
			return
		}
		rm, err := c.registry.Get(state.key)
		if err != nil {
			c.sendError(conn, err)
			return
		}

		pid := state.playerID
		switch cmd.Type {
		case model.CmdStake:
			err = rm.PlaceStake(pid, cmd.Amount)
		case model.CmdPickCards:
			err = rm.SetCards(pid, cmd.Payload)
		case model.CmdStartRound:
			err = rm.StartRound(pid)
		case model.CmdShuffle:
			err = rm.Shuffle(pid)
		case model.CmdClaim:
			err = rm.SubmitClaim(pid, cmd.Payload)
		case model.CmdVerdict:
			err = rm.SubmitVerdict(pid, cmd.Claimant, cmd.Approve)
		case model.CmdAddBot:
			err = rm.AddBot(pid, cmd.Name)
		case model.CmdLeave:
			delete(c.conns, conn)
			rm.Leave(pid)
			c.reap(rm)
		}

		if err != nil {
			c.sendError(conn, err)
		}
	})
}

// Snapshot reads a room's observable state from the loop
func (c *Coordinator) Snapshot(ctx context.Context, key model.RoomKey) (model.SnapshotPayload, error) {
	var snapshot model.SnapshotPayload
	var err error
	callErr := c.call(ctx, func() {
		var rm *room.Room
		rm, err = c.registry.Get(key)
		if err != nil {
			return
		}
		snapshot = rm.Snapshot()
	})
	if callErr != nil {
		return model.SnapshotPayload{}, callErr
	}
	return snapshot, err
}

// RoomCount reports how many rooms are live
func (c *Coordinator) RoomCount(ctx context.Context) (int, error) {
	var n int
	if err := c.call(ctx, func() { n = c.registry.Len() }); err != nil {
		return 0, err
	}
	return n, nil
}

// sendError delivers a rejection to one connection
func (c *Coordinator) sendError(conn model.ConnID, err error) {
	c.sender.Send(conn, model.Event{
		Type: model.EventError,
		To:   conn,
		Data: model.ErrorPayload{
			Code:    errorCode(err),
			Message: err.Error(),
		},
	})
}

// errorCode maps domain errors to stable wire codes
func errorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, model.ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, model.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, model.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, model.ErrAlreadyStaked):
		return "already_staked"
	case errors.Is(err, model.ErrInvalidStake):
		return "invalid_stake"
	case errors.Is(err, model.ErrClaimTooLate):
		return "claim_too_late"
	case errors.Is(err, model.ErrClaimsSettled):
		return "claims_settled"
	case errors.Is(err, model.ErrClaimNotPending):
		return "claim_not_pending"
	default:
		return "internal"
	}
}
