package models

import (
	"encoding/json"
	"sync"
	"time"
)

// Room is a fundraising game session container. The roster is an owned,
// insertion-order-preserving collection; all mutation goes through methods so
// the no-duplicate-connection invariant holds internally.
type Room struct {
	Code       string
	HostConn   string // fixed at creation, never reassigned
	EntryFee   uint64
	PaymentRef string
	Config     json.RawMessage // variant payload for non-bingo room kinds
	CreatedAt  time.Time

	mu          sync.RWMutex
	players     []*Player
	gameStarted bool
}

// RoomView is an immutable snapshot safe to hand to the transport layer.
type RoomView struct {
	Code        string          `json:"code"`
	HostConn    string          `json:"host"`
	EntryFee    uint64          `json:"entryFee"`
	PaymentRef  string          `json:"paymentRef"`
	GameStarted bool            `json:"gameStarted"`
	CreatedAt   time.Time       `json:"createdAt"`
	Config      json.RawMessage `json:"config,omitempty"`
	Players     []PlayerView    `json:"players"`
}

func NewRoom(code, hostConn string, entryFee uint64, paymentRef string, cfg json.RawMessage) *Room {
	return &Room{
		Code:       code,
		HostConn:   hostConn,
		EntryFee:   entryFee,
		PaymentRef: paymentRef,
		Config:     cfg,
		CreatedAt:  time.Now(),
	}
}

// AddPlayer appends to the end of the roster. Insertion order is preserved
// for deterministic ready-count display.
func (r *Room) AddPlayer(p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.players {
		if existing.ConnID == p.ConnID {
			return ErrDuplicatePlayer
		}
	}
	r.players = append(r.players, p)
	return nil
}

// RemovePlayer drops the matching entry; no-op if absent.
func (r *Room) RemovePlayer(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.players {
		if p.ConnID == connID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
}

// ToggleReady flips the ready flag for the matching player.
func (r *Room) ToggleReady(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.ConnID == connID {
			p.IsReady = !p.IsReady
			return nil
		}
	}
	return ErrPlayerNotFound
}

func (r *Room) HasPlayer(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if p.ConnID == connID {
			return true
		}
	}
	return false
}

// IsHost reports whether connID belongs to a seated player with the host flag.
func (r *Room) IsHost(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if p.ConnID == connID {
			return p.IsHost
		}
	}
	return false
}

func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// ConnIDs returns the roster's connection identities in seating order.
func (r *Room) ConnIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ConnID
	}
	return ids
}

func (r *Room) SetGameStarted(started bool) {
	r.mu.Lock()
	r.gameStarted = started
	r.mu.Unlock()
}

func (r *Room) GameStarted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gameStarted
}

// View produces an order-preserving snapshot. Callers never receive a
// reference that lets them mutate registry-owned state.
func (r *Room) View() RoomView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]PlayerView, len(r.players))
	for i, p := range r.players {
		players[i] = p.view()
	}

	var cfg json.RawMessage
	if len(r.Config) > 0 {
		cfg = append(json.RawMessage(nil), r.Config...)
	}

	return RoomView{
		Code:        r.Code,
		HostConn:    r.HostConn,
		EntryFee:    r.EntryFee,
		PaymentRef:  r.PaymentRef,
		GameStarted: r.gameStarted,
		CreatedAt:   r.CreatedAt,
		Config:      cfg,
		Players:     players,
	}
}
