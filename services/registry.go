package services

import (
	"encoding/json"
	"sync"

	"github.com/fundraisely/bingo-server/models"
	"go.uber.org/zap"
)

// Registry owns every Room. It is an explicit instance — dependency-injected
// into the dispatcher, never a process-wide singleton — so isolated instances
// can coexist in tests.
//
// The registry stores and serializes; it deliberately does not authorize.
// Host checks before privileged transitions belong to the dispatcher.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room
	log   *zap.SugaredLogger
}

func NewRegistry(log *zap.SugaredLogger) *Registry {
	return &Registry{
		rooms: make(map[string]*models.Room),
		log:   log,
	}
}

// CreateRoom registers a new room and seats the host as its first player.
func (r *Registry) CreateRoom(code, hostConn, hostName, wallet, paymentRef string, entryFee uint64, cfg json.RawMessage) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[code]; exists {
		return nil, models.ErrDuplicateRoom
	}

	room := models.NewRoom(code, hostConn, entryFee, paymentRef, cfg)
	_ = room.AddPlayer(&models.Player{
		ConnID: hostConn,
		Wallet: wallet,
		Name:   hostName,
		IsHost: true,
	})
	r.rooms[code] = room

	r.log.Infow("room created", "code", code, "host", hostConn, "entryFee", entryFee)
	return room, nil
}

// AddPlayer seats a new player at the end of the roster.
func (r *Registry) AddPlayer(code, connID, name, wallet string, extras map[string]any) error {
	room, ok := r.GetRoom(code)
	if !ok {
		return models.ErrRoomNotFound
	}

	if err := room.AddPlayer(&models.Player{
		ConnID: connID,
		Wallet: wallet,
		Name:   name,
		Extras: extras,
	}); err != nil {
		return err
	}

	r.log.Infow("player joined", "code", code, "conn", connID, "players", room.PlayerCount())
	return nil
}

// RemovePlayer unseats a connection; removing an absent player is a no-op.
func (r *Registry) RemovePlayer(code, connID string) error {
	room, ok := r.GetRoom(code)
	if !ok {
		return models.ErrRoomNotFound
	}
	room.RemovePlayer(connID)
	return nil
}

func (r *Registry) ToggleReady(code, connID string) error {
	room, ok := r.GetRoom(code)
	if !ok {
		return models.ErrRoomNotFound
	}
	return room.ToggleReady(connID)
}

// StartGame flips the room's started flag. No host check here by design.
func (r *Registry) StartGame(code string) error {
	room, ok := r.GetRoom(code)
	if !ok {
		return models.ErrRoomNotFound
	}
	room.SetGameStarted(true)
	return nil
}

// EndGame clears the started flag. The room itself persists until removed.
func (r *Registry) EndGame(code string) error {
	room, ok := r.GetRoom(code)
	if !ok {
		return models.ErrRoomNotFound
	}
	room.SetGameStarted(false)
	return nil
}

func (r *Registry) GetRoom(code string) (*models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

func (r *Registry) GetAllRooms() []*models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}

// RemoveRoom is the explicit cleanup call; rooms are never garbage-collected
// just because the last player left.
func (r *Registry) RemoveRoom(code string) {
	r.mu.Lock()
	delete(r.rooms, code)
	r.mu.Unlock()
}

// SerializeRoom hands back an immutable snapshot for the transport layer.
func (r *Registry) SerializeRoom(room *models.Room) models.RoomView {
	return room.View()
}
