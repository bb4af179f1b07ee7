package room

import (
	"encoding/json"
	"time"

	"github.com/cantorhq/cantor/internal/model"
)

// Directory maps stable player identity to the player's current connection
// and in-room attributes for one room. Records survive reconnects: a join for
// a known identity re-binds the connection handle and leaves stake, cards and
// host status untouched.
type Directory struct {
	records []*model.PlayerRecord // insertion order, drives host succession
	byID    map[model.PlayerID]*model.PlayerRecord
	byConn  map[model.ConnID]*model.PlayerRecord
}

// NewDirectory creates an empty Directory
func NewDirectory() *Directory {
	return &Directory{
		byID:   make(map[model.PlayerID]*model.PlayerRecord),
		byConn: make(map[model.ConnID]*model.PlayerRecord),
	}
}

// Join creates a record for an unseen identity, or re-binds an existing
// record to the new connection. Re-binding removes the stale mapping from the
// old connection handle so a delayed disconnect for it cannot tear down the
// re-bound player. Returns the record and whether this was a re-bind.
func (d *Directory) Join(id model.PlayerID, conn model.ConnID, name string, balance int, at time.Time) (*model.PlayerRecord, bool) {
	if rec, ok := d.byID[id]; ok {
		if rec.Conn != "" {
			delete(d.byConn, rec.Conn)
		}
		rec.Conn = conn
		d.byConn[conn] = rec
		return rec, true
	}

	rec := &model.PlayerRecord{
		ID:          id,
		Conn:        conn,
		DisplayName: name,
		Balance:     balance,
		JoinedAt:    at,
	}
	d.records = append(d.records, rec)
	d.byID[id] = rec
	d.byConn[conn] = rec
	return rec, false
}

// AddBot seats a bot record with no connection handle
func (d *Directory) AddBot(id model.PlayerID, name string, balance int, at time.Time) *model.PlayerRecord {
	rec := &model.PlayerRecord{
		ID:          id,
		DisplayName: name,
		Balance:     balance,
		IsBot:       true,
		JoinedAt:    at,
	}
	d.records = append(d.records, rec)
	d.byID[id] = rec
	return rec
}

// Get returns the record for an identity, or nil
func (d *Directory) Get(id model.PlayerID) *model.PlayerRecord {
	return d.byID[id]
}

// ByConn returns the record bound to a connection, or nil
func (d *Directory) ByConn(conn model.ConnID) *model.PlayerRecord {
	return d.byConn[conn]
}

// Disconnect unbinds a connection from its record without deleting the
// record. Returns the record, or nil if the connection is unknown (already
// re-bound or removed).
func (d *Directory) Disconnect(conn model.ConnID) *model.PlayerRecord {
	rec, ok := d.byConn[conn]
	if !ok {
		return nil
	}
	delete(d.byConn, conn)
	rec.Conn = ""
	return rec
}

// Remove deletes a record entirely. Returns the removed record, or nil.
func (d *Directory) Remove(id model.PlayerID) *model.PlayerRecord {
	rec, ok := d.byID[id]
	if !ok {
		return nil
	}
	delete(d.byID, id)
	if rec.Conn != "" {
		delete(d.byConn, rec.Conn)
	}
	for i, r := range d.records {
		if r.ID == id {
			d.records = append(d.records[:i], d.records[i+1:]...)
			break
		}
	}
	return rec
}

// Len returns the number of records
func (d *Directory) Len() int {
	return len(d.records)
}

// Records returns the records in insertion order
func (d *Directory) Records() []*model.PlayerRecord {
	out := make([]*model.PlayerRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Host returns the current host record, or nil
func (d *Directory) Host() *model.PlayerRecord {
	for _, rec := range d.records {
		if rec.IsHost {
			return rec
		}
	}
	return nil
}

// PromoteSuccessor makes the first remaining human record (by insertion
// order) the host, clearing any other host flags, and returns it. Bots are
// skipped: a bot cannot start rounds or issue verdicts. Returns nil when no
// human records remain.
func (d *Directory) PromoteSuccessor() *model.PlayerRecord {
	var succ *model.PlayerRecord
	for _, rec := range d.records {
		rec.IsHost = false
		if succ == nil && !rec.IsBot {
			succ = rec
		}
	}
	if succ == nil {
		return nil
	}
	succ.IsHost = true
	return succ
}

// ResetRound force-clears every record's per-round stake fields and game-mode
// payload
func (d *Directory) ResetRound() {
	for _, rec := range d.records {
		rec.HasStaked = false
		rec.Stake = 0
		rec.Payload = nil
	}
}

// SetPayload stores a player's per-round game-mode payload
func (d *Directory) SetPayload(id model.PlayerID, payload json.RawMessage) bool {
	rec, ok := d.byID[id]
	if !ok {
		return false
	}
	rec.Payload = payload
	return true
}

// Members renders the directory as snapshot member views
func (d *Directory) Members() []model.MemberView {
	out := make([]model.MemberView, len(d.records))
	for i, rec := range d.records {
		out[i] = model.MemberView{
			ID:          rec.ID,
			DisplayName: rec.DisplayName,
			IsHost:      rec.IsHost,
			IsBot:       rec.IsBot,
			Connected:   rec.Connected() || rec.IsBot,
			HasStaked:   rec.HasStaked,
			Stake:       rec.Stake,
		}
	}
	return out
}
