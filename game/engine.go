package game

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/fundraisely/bingo-server/models"
	"go.uber.org/zap"
)

// DefaultAutoPlayInterval is the reference auto-play period.
const DefaultAutoPlayInterval = 3000 * time.Millisecond

// CallResult is what both a manual call and an auto-play tick produce.
type CallResult struct {
	CurrentNumber int   `json:"currentNumber"`
	CalledNumbers []int `json:"calledNumbers"`
}

// View is a read-only snapshot of a running game.
type View struct {
	CurrentNumber    int       `json:"currentNumber"`
	CalledNumbers    []int     `json:"calledNumbers"`
	Remaining        int       `json:"remaining"`
	AutoPlay         bool      `json:"autoPlay"`
	IsPaused         bool      `json:"isPaused"`
	LineWinners      []string  `json:"lineWinners"`
	FullHouseWinners []string  `json:"fullHouseWinners"`
	StartedAt        time.Time `json:"startedAt"`
}

type gameState struct {
	mu sync.Mutex

	called    []int
	current   int
	available []int
	paused    bool
	autoPlay  bool

	lineWinners      []string
	fullHouseWinners []string
	cards            map[string][]int // connID -> dealt card
	startedAt        time.Time

	// Non-nil iff the auto-play task is armed. Closed exactly once on
	// disable, game end, or tick failure.
	cancel chan struct{}
}

// Engine runs the per-room number-calling state machine. It validates host
// identity nowhere — that is the dispatcher's job.
type Engine struct {
	mu    sync.RWMutex
	games map[string]*gameState

	interval time.Duration
	log      *zap.SugaredLogger

	// Hooks the dispatcher wires so auto-play ticks can broadcast without
	// the engine knowing about the transport.
	onAutoCall func(code string, res CallResult)
	onAutoStop func(code string)
}

func NewEngine(interval time.Duration, log *zap.SugaredLogger) *Engine {
	if interval <= 0 {
		interval = DefaultAutoPlayInterval
	}
	return &Engine{
		games:    make(map[string]*gameState),
		interval: interval,
		log:      log,
	}
}

// SetAutoPlayHooks registers the broadcast callbacks invoked from the
// auto-play goroutine. Must be called before any game starts.
func (e *Engine) SetAutoPlayHooks(onCall func(string, CallResult), onStop func(string)) {
	e.onAutoCall = onCall
	e.onAutoStop = onStop
}

// InitializeGame allocates a fresh 1..75 universe for the room. Initializing
// over a running game is an explicit error, never a silent reset.
func (e *Engine) InitializeGame(code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.games[code]; exists {
		return models.ErrGameAlreadyStarted
	}

	available := make([]int, 75)
	for i := range available {
		available[i] = i + 1
	}

	e.games[code] = &gameState{
		available: available,
		cards:     make(map[string][]int),
		startedAt: time.Now(),
	}

	e.log.Infow("game initialized", "room", code)
	return nil
}

func (e *Engine) get(code string) (*gameState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.games[code]
	return g, ok
}

// CallNumber draws one number uniformly from the remaining set. The same
// contract serves manual host calls and auto-play ticks.
func (e *Engine) CallNumber(code string) (CallResult, error) {
	g, ok := e.get(code)
	if !ok {
		return CallResult{}, models.ErrGameNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused {
		return CallResult{}, models.ErrGamePaused
	}
	if len(g.available) == 0 {
		return CallResult{}, models.ErrNumbersExhausted
	}

	i := rand.Intn(len(g.available))
	n := g.available[i]
	g.available[i] = g.available[len(g.available)-1]
	g.available = g.available[:len(g.available)-1]

	g.called = append(g.called, n)
	g.current = n

	return CallResult{
		CurrentNumber: n,
		CalledNumbers: append([]int(nil), g.called...),
	}, nil
}

// ToggleAutoPlay flips auto-play for the room. Enabling starts exactly one
// recurring task; disabling cancels it deterministically.
func (e *Engine) ToggleAutoPlay(code string) (bool, error) {
	g, ok := e.get(code)
	if !ok {
		return false, models.ErrGameNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		close(g.cancel)
		g.cancel = nil
		g.autoPlay = false
		e.log.Infow("auto-play disabled", "room", code)
		return false, nil
	}

	cancel := make(chan struct{})
	g.cancel = cancel
	g.autoPlay = true
	go e.runAutoPlay(code, cancel)

	e.log.Infow("auto-play enabled", "room", code, "interval", e.interval)
	return true, nil
}

func (e *Engine) runAutoPlay(code string, cancel chan struct{}) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			res, err := e.CallNumber(code)
			if err != nil {
				switch {
				case errors.Is(err, models.ErrGamePaused), errors.Is(err, models.ErrNumbersExhausted):
					// Tick skips work; the task stays armed.
					continue
				case errors.Is(err, models.ErrGameNotFound):
					// Game ended under us; its cancellation already ran.
					return
				default:
					// No request context to report to — degrade locally.
					e.log.Errorw("auto-play tick failed, stopping", "room", code, "err", err)
					e.stopAutoPlay(code)
					if e.onAutoStop != nil {
						e.onAutoStop(code)
					}
					return
				}
			}
			if e.onAutoCall != nil {
				e.onAutoCall(code, res)
			}
		}
	}
}

func (e *Engine) stopAutoPlay(code string) {
	g, ok := e.get(code)
	if !ok {
		return
	}
	g.mu.Lock()
	if g.cancel != nil {
		close(g.cancel)
		g.cancel = nil
	}
	g.autoPlay = false
	g.mu.Unlock()
}

// PauseGame sets the paused flag. An armed auto-play task is left alone; its
// ticks skip until unpause.
func (e *Engine) PauseGame(code string) error {
	return e.setPaused(code, true)
}

// UnpauseGame clears the paused flag; auto-play resumes on the next tick
// without the caller re-toggling it.
func (e *Engine) UnpauseGame(code string) error {
	return e.setPaused(code, false)
}

func (e *Engine) setPaused(code string, paused bool) error {
	g, ok := e.get(code)
	if !ok {
		return models.ErrGameNotFound
	}
	g.mu.Lock()
	g.paused = paused
	g.mu.Unlock()
	return nil
}

// DealCards generates one card per connection and keeps them on the game so
// late queries can re-fetch.
func (e *Engine) DealCards(code string, connIDs []string) (map[string][]int, error) {
	g, ok := e.get(code)
	if !ok {
		return nil, models.ErrGameNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string][]int, len(connIDs))
	for _, id := range connIDs {
		card := GenerateCard()
		g.cards[id] = card
		out[id] = append([]int(nil), card...)
	}
	return out, nil
}

// CardFor returns the card dealt to a connection, if any.
func (e *Engine) CardFor(code, connID string) ([]int, bool) {
	g, ok := e.get(code)
	if !ok {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	card, ok := g.cards[connID]
	if !ok {
		return nil, false
	}
	return append([]int(nil), card...), true
}

// RecordWinners appends to the ordered winner lists.
func (e *Engine) RecordWinners(code string, line, fullHouse []string) error {
	g, ok := e.get(code)
	if !ok {
		return models.ErrGameNotFound
	}
	g.mu.Lock()
	g.lineWinners = append(g.lineWinners, line...)
	g.fullHouseWinners = append(g.fullHouseWinners, fullHouse...)
	g.mu.Unlock()
	return nil
}

// EndGame cancels any armed auto-play task and discards the game state.
// Safe no-op when no game exists.
func (e *Engine) EndGame(code string) {
	e.mu.Lock()
	g, ok := e.games[code]
	if ok {
		delete(e.games, code)
	}
	e.mu.Unlock()

	if !ok {
		return
	}

	g.mu.Lock()
	if g.cancel != nil {
		close(g.cancel)
		g.cancel = nil
	}
	g.autoPlay = false
	g.mu.Unlock()

	e.log.Infow("game ended", "room", code)
}

// Snapshot returns a copy of the game's observable state.
func (e *Engine) Snapshot(code string) (View, bool) {
	g, ok := e.get(code)
	if !ok {
		return View{}, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return View{
		CurrentNumber:    g.current,
		CalledNumbers:    append([]int(nil), g.called...),
		Remaining:        len(g.available),
		AutoPlay:         g.autoPlay,
		IsPaused:         g.paused,
		LineWinners:      append([]string(nil), g.lineWinners...),
		FullHouseWinners: append([]string(nil), g.fullHouseWinners...),
		StartedAt:        g.startedAt,
	}, true
}
