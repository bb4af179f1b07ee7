package room

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cantorhq/cantor/internal/dependencies/clock"
	"github.com/cantorhq/cantor/internal/dependencies/random"
	"github.com/cantorhq/cantor/internal/model"
	"github.com/cantorhq/cantor/internal/services/claims"
	"github.com/cantorhq/cantor/internal/services/gamemode"
	"github.com/cantorhq/cantor/internal/services/ledger"
)

const (
	// BotIDAlphabet is the character set for generated bot identities
	BotIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// BotIDLength is the length of generated bot identities
	BotIDLength = 12
)

// Config holds tuning for one room's timers and bots
type Config struct {
	// ClaimWindow is the grace window after the first claim during which
	// further claims join the same resolution batch
	ClaimWindow time.Duration
	// DisconnectGrace is how long a disconnected player's record is held
	// before it is deleted
	DisconnectGrace time.Duration
	// TickInterval is the driver clock period while the room is active
	TickInterval time.Duration
	// BotDelay is a bot's fixed thinking delay before its synthetic action
	BotDelay time.Duration
	// BotBankroll is the cached balance a freshly seated bot starts with
	BotBankroll int
	// BotStake is the amount a bot wagers each round
	BotStake int
}

// DefaultConfig returns the default room tuning
func DefaultConfig() Config {
	return Config{
		ClaimWindow:     4 * time.Second,
		DisconnectGrace: 30 * time.Second,
		TickInterval:    3 * time.Second,
		BotDelay:        2 * time.Second,
		BotBankroll:     100,
		BotStake:        10,
	}
}

// BalanceSink receives balance deltas for mirroring into the external store.
// Implementations must not block: room handlers run on the event loop, and
// the in-memory balance stays authoritative even if a mirrored write fails.
type BalanceSink interface {
	OnStake(id model.PlayerID, key model.RoomKey, amount, balanceAfter int)
	OnRefund(id model.PlayerID, key model.RoomKey, amount, balanceAfter int)
	OnPayout(id model.PlayerID, key model.RoomKey, amount, balanceAfter int)
}

// NopSink discards balance deltas
type NopSink struct{}

func (NopSink) OnStake(model.PlayerID, model.RoomKey, int, int)  {}
func (NopSink) OnRefund(model.PlayerID, model.RoomKey, int, int) {}
func (NopSink) OnPayout(model.PlayerID, model.RoomKey, int, int) {}

// Deps are the injected collaborators for a Room
type Deps struct {
	Clock  clock.Clock
	Random random.Random
	Sink   BalanceSink
	// Exec re-enters the room's serialized loop; timer callbacks are its
	// only users. All other methods must already be called on the loop.
	Exec func(func())
	// Emit delivers outbound events to the transport boundary
	Emit   func([]model.Event)
	Logger *slog.Logger
}

// Room aggregates one room's ledger, claim registry, player directory and
// game-mode driver, and owns the room's lifecycle and timers. Methods are not
// safe for concurrent use: the session coordinator serializes all access
// through its event loop.
type Room struct {
	key       model.RoomKey
	mode      model.GameMode
	creator   model.PlayerID
	status    model.RoomStatus
	createdAt time.Time

	cfg    Config
	clock  clock.Clock
	random random.Random
	sink   BalanceSink
	exec   func(func())
	emit   func([]model.Event)
	logger *slog.Logger

	directory *Directory
	ledger    *ledger.Ledger
	claims    *claims.Registry
	driver    gamemode.Driver

	// round increments on every start; timer callbacks carry the value they
	// were armed with and no-op when it no longer matches
	round       int
	claimTimer  clock.Timer
	tickTimer   clock.Timer
	graceTimers map[model.PlayerID]clock.Timer
	botTimers   map[model.PlayerID]clock.Timer
	closed      bool
}

// New creates a Room for the given mode
func New(key model.RoomKey, mode model.GameMode, creator model.PlayerID, cfg Config, deps Deps) (*Room, error) {
	driver, err := gamemode.ForMode(mode, deps.Random)
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := deps.Sink
	if sink == nil {
		sink = NopSink{}
	}
	exec := deps.Exec
	if exec == nil {
		exec = func(fn func()) { fn() }
	}
	emit := deps.Emit
	if emit == nil {
		emit = func([]model.Event) {}
	}

	return &Room{
		key:         key,
		mode:        mode,
		creator:     creator,
		status:      model.StatusLobby,
		createdAt:   deps.Clock.Now(),
		cfg:         cfg,
		clock:       deps.Clock,
		random:      deps.Random,
		sink:        sink,
		exec:        exec,
		emit:        emit,
		logger:      logger.With(slog.String("room", string(key))),
		directory:   NewDirectory(),
		ledger:      ledger.New(),
		claims:      claims.New(),
		driver:      driver,
		graceTimers: make(map[model.PlayerID]clock.Timer),
		botTimers:   make(map[model.PlayerID]clock.Timer),
	}, nil
}

// Key returns the room key
func (r *Room) Key() model.RoomKey { return r.key }

// Mode returns the room's game-mode tag
func (r *Room) Mode() model.GameMode { return r.mode }

// Status returns the room's current status
func (r *Room) Status() model.RoomStatus { return r.status }

// Pot returns the current pot
func (r *Room) Pot() int { return r.ledger.Pot() }

// Directory returns the room's player directory
func (r *Room) Directory() *Directory { return r.directory }

// Empty reports whether no human players remain
func (r *Room) Empty() bool {
	for _, rec := range r.directory.Records() {
		if !rec.IsBot {
			return false
		}
	}
	return true
}

// Snapshot renders the observable room state
func (r *Room) Snapshot() model.SnapshotPayload {
	return model.SnapshotPayload{
		Key:     r.key,
		Status:  r.status,
		Mode:    r.mode,
		Pot:     r.ledger.Pot(),
		Members: r.directory.Members(),
		History: r.driver.History(),
	}
}

// Join adds a player or re-binds an existing record to a new connection. The
// first player into an empty room becomes host; a re-bind before the grace
// timer fires preserves stake, cards and host status and cancels the timer.
func (r *Room) Join(id model.PlayerID, conn model.ConnID, name string, balance int) {
	rec, rebound := r.directory.Join(id, conn, name, balance, r.clock.Now())
	if rebound {
		if t, ok := r.graceTimers[id]; ok {
			t.Stop()
			delete(r.graceTimers, id)
		}
		r.logger.Info("player re-bound", slog.String("player", string(id)))
	} else {
		if r.directory.Host() == nil {
			rec.IsHost = true
		}
		r.logger.Info("player joined",
			slog.String("player", string(id)),
			slog.Bool("host", rec.IsHost))
	}

	events := []model.Event{
		{Type: model.EventRole, To: conn, Data: model.RolePayload{PlayerID: id, IsHost: rec.IsHost}},
		{Type: model.EventRoomSnapshot, Data: r.Snapshot()},
	}

	// A host re-binding mid-resolution picks the pending claim list back up
	if rec.IsHost && r.status == model.StatusResolving {
		events = append(events, model.Event{
			Type: model.EventClaimList,
			To:   conn,
			Data: model.ClaimListPayload{Claims: r.claims.Pending()},
		})
	}

	r.emit(events)
}

// Leave removes a player explicitly. Unknown identities are ignored.
func (r *Room) Leave(id model.PlayerID) {
	if r.directory.Get(id) == nil {
		return
	}
	r.emit(r.removePlayer(id, "leave"))
}

// Disconnect unbinds a connection and starts the grace timer. A disconnect
// for an already re-bound or removed connection is a silent no-op.
func (r *Room) Disconnect(conn model.ConnID) {
	rec := r.directory.Disconnect(conn)
	if rec == nil {
		return
	}

	id := rec.ID
	if t, ok := r.graceTimers[id]; ok {
		t.Stop()
	}
	r.graceTimers[id] = r.clock.AfterFunc(r.cfg.DisconnectGrace, func() {
		r.exec(func() { r.onGraceExpired(id) })
	})

	r.logger.Info("player disconnected, grace started", slog.String("player", string(id)))
	r.emit([]model.Event{{Type: model.EventRoomSnapshot, Data: r.Snapshot()}})
}

// onGraceExpired deletes a record whose disconnect grace elapsed without a
// re-bind. The record may have re-bound or left since the timer was armed.
func (r *Room) onGraceExpired(id model.PlayerID) {
	if r.closed {
		return
	}
	delete(r.graceTimers, id)

	rec := r.directory.Get(id)
	if rec == nil || rec.Connected() {
		return
	}
	r.logger.Info("disconnect grace expired", slog.String("player", string(id)))
	r.emit(r.removePlayer(id, "grace_expired"))
}

// removePlayer runs leave side-effects: refund while the round is not yet
// committed, host migration, room teardown when the last human leaves.
func (r *Room) removePlayer(id model.PlayerID, reason string) []model.Event {
	rec := r.directory.Get(id)
	if rec == nil {
		return nil
	}

	var events []model.Event

	if r.refundEligible() && rec.Stake > 0 {
		refunded := r.ledger.Refund(rec)
		if refunded > 0 {
			r.sink.OnRefund(id, r.key, refunded, rec.Balance)
			events = append(events, model.Event{
				Type: model.EventPot,
				Data: model.PotPayload{Pot: r.ledger.Pot(), PlayerID: id},
			})
		}
	}

	wasHost := rec.IsHost
	r.directory.Remove(id)
	if t, ok := r.graceTimers[id]; ok {
		t.Stop()
		delete(r.graceTimers, id)
	}
	if t, ok := r.botTimers[id]; ok {
		t.Stop()
		delete(r.botTimers, id)
	}

	r.logger.Info("player removed",
		slog.String("player", string(id)),
		slog.String("reason", reason),
		slog.Bool("was_host", wasHost))

	if r.Empty() {
		r.Close()
		return events
	}

	if wasHost {
		succ := r.directory.PromoteSuccessor()
		events = append(events, model.Event{
			Type: model.EventHostChanged,
			Data: model.HostChangedPayload{HostID: succ.ID},
		})
		if succ.Connected() {
			events = append(events, model.Event{
				Type: model.EventRole,
				To:   succ.Conn,
				Data: model.RolePayload{PlayerID: succ.ID, IsHost: true},
			})
			// A round stalled mid-resolution resumes with the new host
			if r.status == model.StatusResolving {
				events = append(events, model.Event{
					Type: model.EventClaimList,
					To:   succ.Conn,
					Data: model.ClaimListPayload{Claims: r.claims.Pending()},
				})
			}
		}
	}

	events = append(events, model.Event{Type: model.EventRoomSnapshot, Data: r.Snapshot()})
	return events
}

// refundEligible reports whether a departing player's stake is still
// returnable. Only Resolving commits the stake to the pot being decided:
// settlement returns the room to the lobby with per-round stakes cleared, so
// anything staked after that belongs to the next round and is refundable.
func (r *Room) refundEligible() bool {
	return r.status != model.StatusResolving
}

// PlaceStake commits a wager to the pot. Stakes are only accepted in the
// lobby, before the round starts.
func (r *Room) PlaceStake(id model.PlayerID, amount int) error {
	rec := r.directory.Get(id)
	if rec == nil {
		return model.ErrNotInRoom
	}
	if r.status != model.StatusLobby {
		return model.ErrInvalidState
	}

	if err := r.ledger.Stake(rec, amount); err != nil {
		return err
	}
	r.sink.OnStake(id, r.key, amount, rec.Balance)

	r.emit([]model.Event{{
		Type: model.EventPot,
		Data: model.PotPayload{Pot: r.ledger.Pot(), PlayerID: id, Stake: amount},
	}})
	return nil
}

// SetCards stores a player's per-round game-mode payload (e.g. chosen cards)
func (r *Room) SetCards(id model.PlayerID, payload json.RawMessage) error {
	if r.status != model.StatusLobby {
		return model.ErrInvalidState
	}
	if !r.directory.SetPayload(id, payload) {
		return model.ErrNotInRoom
	}
	r.emit([]model.Event{{Type: model.EventRoomSnapshot, Data: r.Snapshot()}})
	return nil
}

// StartRound begins a round: clears the claim registry, starts the driver
// clock, and re-deals an exhausted driver so the round never opens without
// content. id must hold the host role at call time; a stale host reference
// is a silent no-op.
func (r *Room) StartRound(id model.PlayerID) error {
	if !r.isHost(id) {
		return nil
	}
	if r.status != model.StatusLobby {
		return model.ErrInvalidState
	}

	if !r.driver.Ready() {
		r.driver.Reset()
	}
	r.claims.Reset()
	r.ledger.BeginRound()
	r.round++
	r.status = model.StatusActive
	r.armTick()

	r.logger.Info("round started", slog.Int("round", r.round))
	r.emit([]model.Event{{Type: model.EventRoundStarted, Data: r.Snapshot()}})
	return nil
}

// Shuffle re-deals the driver's content and clears the call history.
// Host-only; permitted only between rounds.
func (r *Room) Shuffle(id model.PlayerID) error {
	if !r.isHost(id) {
		return nil
	}
	if r.status != model.StatusLobby {
		return model.ErrInvalidState
	}
	r.driver.Reset()
	r.emit([]model.Event{{Type: model.EventRoomSnapshot, Data: r.Snapshot()}})
	return nil
}

// AddBot seats a bot player. Bots stake after their thinking delay and from
// then on behave as ordinary player records with synthetic actions.
func (r *Room) AddBot(id model.PlayerID, name string) error {
	if !r.isHost(id) {
		return nil
	}
	if r.status != model.StatusLobby {
		return model.ErrInvalidState
	}

	botID := model.PlayerID("bot-" + r.random.String(BotIDLength, BotIDAlphabet))
	rec := r.directory.AddBot(botID, name, r.cfg.BotBankroll, r.clock.Now())

	r.botTimers[botID] = r.clock.AfterFunc(r.cfg.BotDelay, func() {
		r.exec(func() { r.onBotStake(botID) })
	})

	r.logger.Info("bot seated", slog.String("bot", string(botID)))
	_ = rec
	r.emit([]model.Event{{Type: model.EventRoomSnapshot, Data: r.Snapshot()}})
	return nil
}

// onBotStake is a bot's deferred stake submission
func (r *Room) onBotStake(id model.PlayerID) {
	if r.closed {
		return
	}
	delete(r.botTimers, id)

	rec := r.directory.Get(id)
	if rec == nil || r.status != model.StatusLobby || rec.HasStaked {
		return
	}
	if err := r.ledger.Stake(rec, r.cfg.BotStake); err != nil {
		return
	}
	r.emit([]model.Event{{
		Type: model.EventPot,
		Data: model.PotPayload{Pot: r.ledger.Pot(), PlayerID: id, Stake: r.cfg.BotStake},
	}})
}

// armTick schedules the next driver tick for the current round
func (r *Room) armTick() {
	if r.tickTimer != nil {
		r.tickTimer.Stop()
	}
	gen := r.round
	r.tickTimer = r.clock.AfterFunc(r.cfg.TickInterval, func() {
		r.exec(func() { r.onTick(gen) })
	})
}

// stopTick pauses the driver clock
func (r *Room) stopTick() {
	if r.tickTimer != nil {
		r.tickTimer.Stop()
		r.tickTimer = nil
	}
}

// onTick advances the driver by one content unit. A tick armed for an
// earlier round, or arriving outside Active, is stale and ignored.
func (r *Room) onTick(gen int) {
	if r.closed || gen != r.round || r.status != model.StatusActive {
		return
	}

	unit, ok := r.driver.Tick()
	if !ok {
		// Driver exhausted with no claim; the room waits for claims or a
		// host reset
		r.tickTimer = nil
		return
	}

	r.emit([]model.Event{{Type: model.EventContent, Data: unit}})

	if unit.Final {
		r.tickTimer = nil
		r.armBotClaims()
		return
	}
	r.armTick()
}

// armBotClaims schedules each bot's synthetic claim after its thinking delay
func (r *Room) armBotClaims() {
	gen := r.round
	for _, rec := range r.directory.Records() {
		if !rec.IsBot || !rec.HasStaked {
			continue
		}
		botID := rec.ID
		if t, ok := r.botTimers[botID]; ok {
			t.Stop()
		}
		r.botTimers[botID] = r.clock.AfterFunc(r.cfg.BotDelay, func() {
			r.exec(func() { r.onBotClaim(gen, botID) })
		})
	}
}

// onBotClaim is a bot's deferred claim submission
func (r *Room) onBotClaim(gen int, id model.PlayerID) {
	if r.closed || gen != r.round {
		return
	}
	delete(r.botTimers, id)
	if r.directory.Get(id) == nil {
		return
	}
	_ = r.SubmitClaim(id, json.RawMessage(`{"bot":true}`))
}

// SubmitClaim records a win claim. The first claim of a round pauses the
// driver and opens the grace window; claims inside the window join the same
// batch; claims after Resolving has begun must wait for the next round.
func (r *Room) SubmitClaim(id model.PlayerID, snapshot json.RawMessage) error {
	rec := r.directory.Get(id)
	if rec == nil {
		return model.ErrNotInRoom
	}

	switch r.status {
	case model.StatusActive:
		claim, err := r.claims.Add(id, snapshot, r.clock.Now())
		if err != nil {
			return err
		}
		if claim == nil {
			return nil
		}

		r.stopTick()
		r.status = model.StatusAwaitingClaims
		gen := r.round
		r.claimTimer = r.clock.AfterFunc(r.cfg.ClaimWindow, func() {
			r.exec(func() { r.onClaimWindow(gen) })
		})

		r.logger.Info("claim window opened", slog.String("claimant", string(id)))
		r.emit([]model.Event{{
			Type: model.EventClaimWindow,
			Data: model.ClaimWindowPayload{
				Claimant: id,
				ClosesMS: r.cfg.ClaimWindow.Milliseconds(),
			},
		}})
		return nil

	case model.StatusAwaitingClaims:
		claim, err := r.claims.Add(id, snapshot, r.clock.Now())
		if err != nil {
			return err
		}
		if claim == nil {
			// duplicate claim this round, ignored
			return nil
		}
		r.emit([]model.Event{{Type: model.EventClaimFiled, Data: *claim}})
		return nil

	case model.StatusResolving:
		return model.ErrClaimTooLate

	default:
		return model.ErrInvalidState
	}
}

// onClaimWindow closes the grace window and hands the ordered claim list to
// the host for sequential validation
func (r *Room) onClaimWindow(gen int) {
	if r.closed || gen != r.round || r.status != model.StatusAwaitingClaims {
		return
	}
	r.claimTimer = nil
	r.status = model.StatusResolving

	events := []model.Event{{Type: model.EventRoomSnapshot, Data: r.Snapshot()}}
	if host := r.directory.Host(); host != nil && host.Connected() {
		events = append(events, model.Event{
			Type: model.EventClaimList,
			To:   host.Conn,
			Data: model.ClaimListPayload{Claims: r.claims.Pending()},
		})
	}
	// A disconnected host stalls the round; the list is re-delivered when a
	// successor is promoted or the host re-binds

	r.logger.Info("claim window closed", slog.Int("claims", r.claims.Len()))
	r.emit(events)
}

// SubmitVerdict records the host's verdict for one pending claim. When the
// last claim is resolved the round either settles (at least one validated)
// or resumes as a false alarm (all rejected). id must hold the host role at
// call time; a stale host reference is a silent no-op.
func (r *Room) SubmitVerdict(id model.PlayerID, claimant model.PlayerID, approve bool) error {
	if !r.isHost(id) {
		return nil
	}
	if r.status != model.StatusResolving {
		return model.ErrInvalidState
	}

	claim, err := r.claims.Resolve(claimant, approve)
	if err != nil {
		return err
	}

	events := []model.Event{{
		Type: model.EventVerdict,
		Data: model.VerdictPayload{Claimant: claimant, Status: claim.Status},
	}}

	if !r.claims.AllResolved() {
		r.emit(events)
		return nil
	}

	winners := r.claims.Validated()
	if len(winners) == 0 {
		// False alarm: resume the driver from where it paused
		r.status = model.StatusActive
		r.armTick()
		r.logger.Info("all claims rejected, round resumed")
		events = append(events, model.Event{Type: model.EventRoundResumed, Data: r.Snapshot()})
		r.emit(events)
		return nil
	}

	events = append(events, r.settle(winners)...)
	r.emit(events)
	return nil
}

// settle pays the pot out to the validated claimants and resets the round
func (r *Room) settle(winners []model.PlayerID) []model.Event {
	// Claimants who left during resolution forfeited their share
	recs := make([]*model.PlayerRecord, 0, len(winners))
	for _, w := range winners {
		if rec := r.directory.Get(w); rec != nil {
			recs = append(recs, rec)
		}
	}

	var payouts map[model.PlayerID]int
	var remainder int
	if len(recs) > 0 {
		payouts, remainder = r.ledger.Settle(recs)
	} else {
		remainder = r.ledger.Forfeit()
	}
	r.claims.MarkSettled()

	for winnerID, amount := range payouts {
		if rec := r.directory.Get(winnerID); rec != nil {
			r.sink.OnPayout(winnerID, r.key, amount, rec.Balance)
		}
	}

	r.directory.ResetRound()
	r.status = model.StatusLobby

	r.logger.Info("round settled",
		slog.Int("winners", len(payouts)),
		slog.Int("remainder", remainder))

	return []model.Event{
		{Type: model.EventSettlement, Data: model.SettlementPayload{Payouts: payouts, Remainder: remainder}},
		{Type: model.EventRoomSnapshot, Data: r.Snapshot()},
	}
}

// isHost re-checks the host role at call time; host identity can change
// between scheduling and execution of deferred work
func (r *Room) isHost(id model.PlayerID) bool {
	rec := r.directory.Get(id)
	return rec != nil && rec.IsHost
}

// Close cancels every outstanding timer scoped to the room
func (r *Room) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.stopTick()
	if r.claimTimer != nil {
		r.claimTimer.Stop()
		r.claimTimer = nil
	}
	for id, t := range r.graceTimers {
		t.Stop()
		delete(r.graceTimers, id)
	}
	for id, t := range r.botTimers {
		t.Stop()
		delete(r.botTimers, id)
	}
	r.logger.Info("room closed")
}

// Closed reports whether the room has been torn down
func (r *Room) Closed() bool {
	return r.closed
}
