package services

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fundraisely/bingo-server/game"
	"github.com/fundraisely/bingo-server/models"
	"go.uber.org/zap"
)

// Broadcaster is the transport-supplied primitive the dispatcher emits
// through. The hub implements it; tests swap in a recorder.
type Broadcaster interface {
	SendToConn(connID, event string, payload any)
	BroadcastToRoom(code, event string, payload any)
	JoinRoom(code, connID string)
	LeaveRoom(code, connID string)
}

// Limit is a per-action attempt budget for the sliding-window limiter.
type Limit struct {
	MaxAttempts int
	Window      time.Duration
}

// defaultLimits throttles the abuse-prone message types. Actions missing
// here are not rate limited.
var defaultLimits = map[string]Limit{
	"create_room":      {5, time.Minute},
	"join_room":        {10, time.Minute},
	"toggle_ready":     {20, 10 * time.Second},
	"call_number":      {120, time.Minute},
	"toggle_auto_play": {10, 10 * time.Second},
}

// Message is the inbound wire envelope.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Winners as declared by the host in game_over.
type Winners struct {
	Line      []string `json:"line"`
	FullHouse []string `json:"fullHouse"`
}

// Dispatcher binds inbound real-time messages to the registry and engine,
// enforces rate limits and host authorization, and broadcasts recomputed
// room state to every member.
type Dispatcher struct {
	registry *Registry
	engine   *game.Engine
	limiter  *RateLimiter
	bc       Broadcaster
	log      *zap.SugaredLogger
	limits   map[string]Limit

	// connID -> room codes, so a disconnect sweep is proportional to the
	// connection's rooms rather than the whole registry.
	mu        sync.Mutex
	connRooms map[string]map[string]struct{}
}

func NewDispatcher(registry *Registry, engine *game.Engine, limiter *RateLimiter, bc Broadcaster, log *zap.SugaredLogger) *Dispatcher {
	d := &Dispatcher{
		registry:  registry,
		engine:    engine,
		limiter:   limiter,
		bc:        bc,
		log:       log,
		limits:    defaultLimits,
		connRooms: make(map[string]map[string]struct{}),
	}

	engine.SetAutoPlayHooks(
		func(code string, res game.CallResult) {
			bc.BroadcastToRoom(code, "number_called", res)
		},
		func(code string) {
			bc.BroadcastToRoom(code, "auto_play_update", map[string]bool{"autoPlay": false})
		},
	)

	return d
}

// HandleMessage routes one raw inbound frame from a connection.
func (d *Dispatcher) HandleMessage(connID string, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		d.sendError(connID, models.ErrInvalidPayload)
		return
	}

	if limit, ok := d.limits[msg.Type]; ok {
		if d.limiter.IsRateLimited(connID, msg.Type, limit.MaxAttempts, limit.Window) {
			d.sendError(connID, models.ErrRateLimited)
			return
		}
	}

	var err error
	switch msg.Type {
	case "create_room":
		err = d.handleCreateRoom(connID, msg.Data)
	case "join_room":
		err = d.handleJoinRoom(connID, msg.Data)
	case "toggle_ready":
		err = d.handleToggleReady(connID, msg.Data)
	case "start_game":
		err = d.handleStartGame(connID, msg.Data)
	case "call_number":
		err = d.handleCallNumber(connID, msg.Data)
	case "toggle_auto_play":
		err = d.handleToggleAutoPlay(connID, msg.Data)
	case "pause_game":
		err = d.handlePauseGame(connID, msg.Data)
	case "unpause_game":
		err = d.handleUnpauseGame(connID, msg.Data)
	case "game_over":
		err = d.handleGameOver(connID, msg.Data)
	default:
		d.log.Debugw("unknown message type", "conn", connID, "type", msg.Type)
		err = models.ErrInvalidPayload
	}

	if err != nil {
		d.sendError(connID, err)
	}
}

// HandleDisconnect removes the connection from every room it joined and
// re-broadcasts each.
func (d *Dispatcher) HandleDisconnect(connID string) {
	d.limiter.Clear(connID)

	d.mu.Lock()
	codes := make([]string, 0, len(d.connRooms[connID]))
	for code := range d.connRooms[connID] {
		codes = append(codes, code)
	}
	delete(d.connRooms, connID)
	d.mu.Unlock()

	for _, code := range codes {
		_ = d.registry.RemovePlayer(code, connID)
		d.bc.LeaveRoom(code, connID)
		d.broadcastRoom(code)
	}

	if len(codes) > 0 {
		d.log.Infow("connection swept from rooms", "conn", connID, "rooms", len(codes))
	}
}

type createRoomPayload struct {
	Code       string          `json:"code"`
	PlayerName string          `json:"playerName"`
	Wallet     string          `json:"wallet"`
	PaymentRef string          `json:"paymentRef"`
	EntryFee   uint64          `json:"entryFee"`
	Config     json.RawMessage `json:"config"`
}

func (d *Dispatcher) handleCreateRoom(connID string, data json.RawMessage) error {
	var p createRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Code == "" || p.PlayerName == "" {
		return models.ErrInvalidPayload
	}

	if _, err := d.registry.CreateRoom(p.Code, connID, p.PlayerName, p.Wallet, p.PaymentRef, p.EntryFee, p.Config); err != nil {
		return err
	}

	d.trackJoin(connID, p.Code)
	d.bc.JoinRoom(p.Code, connID)
	d.bc.SendToConn(connID, "room_created", map[string]string{"code": p.Code})
	d.broadcastRoom(p.Code)
	return nil
}

type joinRoomPayload struct {
	Code       string         `json:"code"`
	PlayerName string         `json:"playerName"`
	Wallet     string         `json:"wallet"`
	Extras     map[string]any `json:"extras"`
}

func (d *Dispatcher) handleJoinRoom(connID string, data json.RawMessage) error {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Code == "" || p.PlayerName == "" {
		return models.ErrInvalidPayload
	}

	if err := d.registry.AddPlayer(p.Code, connID, p.PlayerName, p.Wallet, p.Extras); err != nil {
		return err
	}

	d.trackJoin(connID, p.Code)
	d.bc.JoinRoom(p.Code, connID)
	d.broadcastRoom(p.Code)
	return nil
}

type codePayload struct {
	Code string `json:"code"`
}

func decodeCode(data json.RawMessage) (string, error) {
	var p codePayload
	if err := json.Unmarshal(data, &p); err != nil || p.Code == "" {
		return "", models.ErrInvalidPayload
	}
	return p.Code, nil
}

func (d *Dispatcher) handleToggleReady(connID string, data json.RawMessage) error {
	code, err := decodeCode(data)
	if err != nil {
		return err
	}

	if err := d.registry.ToggleReady(code, connID); err != nil {
		return err
	}
	d.broadcastRoom(code)
	return nil
}

func (d *Dispatcher) handleStartGame(connID string, data json.RawMessage) error {
	code, err := decodeCode(data)
	if err != nil {
		return err
	}

	room, err := d.requireHost(code, connID)
	if err != nil {
		return err
	}

	if err := d.engine.InitializeGame(code); err != nil {
		return err
	}
	_ = d.registry.StartGame(code)

	conns := room.ConnIDs()
	cards, _ := d.engine.DealCards(code, conns)

	d.bc.BroadcastToRoom(code, "game_started", map[string]string{"code": code})
	for _, id := range conns {
		d.bc.SendToConn(id, "card_dealt", map[string]any{"code": code, "card": cards[id]})
	}
	d.broadcastRoom(code)
	return nil
}

func (d *Dispatcher) handleCallNumber(connID string, data json.RawMessage) error {
	code, err := decodeCode(data)
	if err != nil {
		return err
	}

	res, err := d.engine.CallNumber(code)
	if err != nil {
		return err
	}
	d.bc.BroadcastToRoom(code, "number_called", res)
	return nil
}

func (d *Dispatcher) handleToggleAutoPlay(connID string, data json.RawMessage) error {
	code, err := decodeCode(data)
	if err != nil {
		return err
	}

	enabled, err := d.engine.ToggleAutoPlay(code)
	if err != nil {
		return err
	}
	d.bc.BroadcastToRoom(code, "auto_play_update", map[string]bool{"autoPlay": enabled})
	return nil
}

func (d *Dispatcher) handlePauseGame(connID string, data json.RawMessage) error {
	code, err := decodeCode(data)
	if err != nil {
		return err
	}

	if err := d.engine.PauseGame(code); err != nil {
		return err
	}
	d.bc.BroadcastToRoom(code, "game_paused", struct{}{})
	return nil
}

func (d *Dispatcher) handleUnpauseGame(connID string, data json.RawMessage) error {
	code, err := decodeCode(data)
	if err != nil {
		return err
	}

	if err := d.engine.UnpauseGame(code); err != nil {
		return err
	}
	d.bc.BroadcastToRoom(code, "game_unpaused", struct{}{})
	return nil
}

type gameOverPayload struct {
	Code    string  `json:"code"`
	Winners Winners `json:"winners"`
}

func (d *Dispatcher) handleGameOver(connID string, data json.RawMessage) error {
	var p gameOverPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Code == "" {
		return models.ErrInvalidPayload
	}

	if _, err := d.requireHost(p.Code, connID); err != nil {
		return err
	}

	// Record before teardown so the final snapshot carries the winner lists.
	if err := d.engine.RecordWinners(p.Code, p.Winners.Line, p.Winners.FullHouse); err != nil {
		return err
	}
	d.engine.EndGame(p.Code)
	_ = d.registry.EndGame(p.Code)

	d.bc.BroadcastToRoom(p.Code, "game_ended", map[string]any{"code": p.Code, "winners": p.Winners})
	d.broadcastRoom(p.Code)
	return nil
}

// requireHost authorizes privileged transitions: the caller must be a seated
// player with the host flag.
func (d *Dispatcher) requireHost(code, connID string) (*models.Room, error) {
	room, ok := d.registry.GetRoom(code)
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	if !room.IsHost(connID) {
		return nil, models.ErrUnauthorized
	}
	return room, nil
}

func (d *Dispatcher) broadcastRoom(code string) {
	room, ok := d.registry.GetRoom(code)
	if !ok {
		return
	}
	d.bc.BroadcastToRoom(code, "room_update", d.registry.SerializeRoom(room))
}

func (d *Dispatcher) trackJoin(connID, code string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rooms, ok := d.connRooms[connID]
	if !ok {
		rooms = make(map[string]struct{})
		d.connRooms[connID] = rooms
	}
	rooms[code] = struct{}{}
}

// sendError maps a domain error onto its typed `*_error` event.
func (d *Dispatcher) sendError(connID string, err error) {
	event := "internal_error"
	switch {
	case errors.Is(err, models.ErrRoomNotFound),
		errors.Is(err, models.ErrPlayerNotFound),
		errors.Is(err, models.ErrGameNotFound):
		event = "not_found_error"
	case errors.Is(err, models.ErrDuplicateRoom),
		errors.Is(err, models.ErrDuplicatePlayer):
		event = "conflict_error"
	case errors.Is(err, models.ErrGameAlreadyStarted),
		errors.Is(err, models.ErrGamePaused),
		errors.Is(err, models.ErrNumbersExhausted):
		event = "invalid_state_error"
	case errors.Is(err, models.ErrUnauthorized):
		event = "unauthorized_error"
	case errors.Is(err, models.ErrRateLimited):
		event = "rate_limited_error"
	case errors.Is(err, models.ErrInvalidPayload):
		event = "validation_error"
	}

	d.bc.SendToConn(connID, event, errorPayload{Message: err.Error()})
}
