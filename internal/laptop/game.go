package laptop

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrMissingCredentials = errors.New("please enter username and password")
	ErrNotLoggedIn        = errors.New("not logged in")
	// ErrBusy is returned by Spin while the previous spin is still cooling down.
	ErrBusy = errors.New("laptop is still spinning")
)

const (
	SpinPoints   = 10
	MaxSpinAngle = 180
	DragFactor   = 0.5

	ScreenReady  = "READY TO PLAY"
	ScreenActive = "GAME ACTIVE!"
)

// Timing controls the cooldown and game clock.
type Timing struct {
	SpinCooldown time.Duration
	GameTick     time.Duration
	GameLength   time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		SpinCooldown: time.Second,
		GameTick:     time.Second,
		GameLength:   10 * time.Second,
	}
}

// Rotation is the laptop orientation in degrees.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Drag maps a pointer delta onto a rotation captured at drag start.
func Drag(start Rotation, dx, dy float64) Rotation {
	return Rotation{
		X: start.X - dy*DragFactor,
		Y: start.Y + dx*DragFactor,
	}
}

// Game is one session's clicker state.
type Game struct {
	mu        sync.Mutex
	username  string
	score     int
	rotation  Rotation
	dragStart *Rotation
	spinning  bool
	active    bool
	screen    string

	timing Timing
	rng    *rand.Rand
	logger *zap.Logger

	spinTimer *time.Timer
	stopGame  context.CancelFunc
	gameDone  chan struct{}
}

func NewGame(timing Timing, rng *rand.Rand, logger *zap.Logger) *Game {
	def := DefaultTiming()
	if timing.SpinCooldown <= 0 {
		timing.SpinCooldown = def.SpinCooldown
	}
	if timing.GameTick <= 0 {
		timing.GameTick = def.GameTick
	}
	if timing.GameLength <= 0 {
		timing.GameLength = def.GameLength
	}
	return &Game{
		screen: ScreenReady,
		timing: timing,
		rng:    rng,
		logger: logger,
	}
}

// Login accepts any non-empty username and password.
func (g *Game) Login(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.username = username
	g.logger.Info("laptop game login", zap.String("username", username))
	return nil
}

// Logout resets the user, score and any running game.
func (g *Game) Logout() {
	g.haltGame()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.username = ""
	g.score = 0
	g.active = false
	g.screen = ScreenReady
}

func (g *Game) requireLogin() error {
	if g.username == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// Spin rotates the laptop to a random orientation and awards SpinPoints.
func (g *Game) Spin() (Rotation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireLogin(); err != nil {
		return Rotation{}, err
	}
	if g.spinning {
		return g.rotation, ErrBusy
	}

	g.spinning = true
	g.rotation = Rotation{
		X: float64(g.rng.Intn(2*MaxSpinAngle+1) - MaxSpinAngle),
		Y: float64(g.rng.Intn(2*MaxSpinAngle+1) - MaxSpinAngle),
	}
	g.score += SpinPoints
	g.spinTimer = time.AfterFunc(g.timing.SpinCooldown, func() {
		g.mu.Lock()
		g.spinning = false
		g.mu.Unlock()
	})
	return g.rotation, nil
}

// StartGame runs a timed round: every tick adds 1..5 points, and the round
// ends by itself after GameLength. A start while a round is active is a no-op.
func (g *Game) StartGame(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireLogin(); err != nil {
		return err
	}
	if g.active {
		return nil
	}

	if g.stopGame != nil {
		g.stopGame()
	}
	ctx, cancel := context.WithTimeout(ctx, g.timing.GameLength)
	done := make(chan struct{})
	g.active = true
	g.screen = ScreenActive
	g.stopGame = cancel
	g.gameDone = done

	go g.play(ctx, done)
	return nil
}

func (g *Game) play(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(g.timing.GameTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.finish(ctx.Err())
			return
		case <-ticker.C:
			g.mu.Lock()
			if g.active {
				points := 1 + g.rng.Intn(5)
				g.score += points
				g.screen = fmt.Sprintf("+%d POINTS!", points)
			}
			g.mu.Unlock()
		}
	}
}

func (g *Game) finish(reason error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return
	}
	g.active = false
	if errors.Is(reason, context.DeadlineExceeded) {
		g.screen = fmt.Sprintf("FINAL SCORE: %d", g.score)
		g.logger.Info("laptop game over",
			zap.String("username", g.username),
			zap.Int("score", g.score),
		)
	}
}

// haltGame cancels a running round and waits for its goroutine.
func (g *Game) haltGame() {
	g.mu.Lock()
	cancel, done := g.stopGame, g.gameDone
	g.stopGame, g.gameDone = nil, nil
	g.active = false
	g.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// BeginDrag captures the current rotation as the drag origin.
func (g *Game) BeginDrag() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireLogin(); err != nil {
		return err
	}
	start := g.rotation
	g.dragStart = &start
	return nil
}

// DragTo applies the pointer delta since BeginDrag. Without a drag in
// progress it starts one from the current rotation.
func (g *Game) DragTo(dx, dy float64) (Rotation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.requireLogin(); err != nil {
		return Rotation{}, err
	}
	if g.dragStart == nil {
		start := g.rotation
		g.dragStart = &start
	}
	g.rotation = Drag(*g.dragStart, dx, dy)
	return g.rotation, nil
}

func (g *Game) EndDrag() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dragStart = nil
}

// View is the rendered game screen.
type View struct {
	LoggedIn bool     `json:"logged_in"`
	Username string   `json:"username,omitempty"`
	Welcome  string   `json:"welcome,omitempty"`
	Score    int      `json:"score"`
	Rotation Rotation `json:"rotation"`
	Spinning bool     `json:"spinning"`
	Active   bool     `json:"active"`
	Screen   string   `json:"screen"`
}

func (g *Game) Render(_ context.Context) View {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := View{
		LoggedIn: g.username != "",
		Username: g.username,
		Score:    g.score,
		Rotation: g.rotation,
		Spinning: g.spinning,
		Active:   g.active,
		Screen:   g.screen,
	}
	if v.LoggedIn {
		v.Welcome = fmt.Sprintf("Welcome, %s!", g.username)
	}
	return v
}

// Close stops every timer owned by the game.
func (g *Game) Close() error {
	g.haltGame()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.spinTimer != nil {
		g.spinTimer.Stop()
		g.spinTimer = nil
	}
	return nil
}
