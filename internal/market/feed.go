package market

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultCapacity = 100
	DefaultInterval = time.Second
	// MaxDrift bounds the relative price move of one tick.
	MaxDrift = 0.005
)

// Point is one sample of a price series. Time is the wall clock HH:MM:SS label.
type Point struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// Portfolio holds cash and coin amounts.
type Portfolio struct {
	Cash float64 `json:"cash"`
	BTC  float64 `json:"btc"`
	ETH  float64 `json:"eth"`
}

// DefaultPortfolio 初始持仓
func DefaultPortfolio() Portfolio {
	return Portfolio{Cash: 10000, BTC: 0.5, ETH: 5}
}

// Value returns cash + btc*btcPrice + eth*ethPrice.
func (p Portfolio) Value(btcPrice, ethPrice float64) float64 {
	return p.Cash + p.BTC*btcPrice + p.ETH*ethPrice
}

// Quote is what one tick produced. It is handed to every Sink.
type Quote struct {
	At    time.Time `json:"at"`
	Label string    `json:"label"`
	BTC   float64   `json:"btc"`
	ETH   float64   `json:"eth"`
	Total float64   `json:"total"`
}

// Sink receives every quote. Errors are logged by the feed and otherwise ignored.
type Sink interface {
	Publish(ctx context.Context, q Quote) error
}

// Config 行情模拟配置
type Config struct {
	Interval  time.Duration
	Capacity  int
	StartBTC  float64
	StartETH  float64
	Portfolio Portfolio
}

// DefaultConfig returns the 1s / 100 point / BTC 50000 / ETH 3000 setup.
func DefaultConfig() Config {
	return Config{
		Interval:  DefaultInterval,
		Capacity:  DefaultCapacity,
		StartBTC:  50000,
		StartETH:  3000,
		Portfolio: DefaultPortfolio(),
	}
}

// Feed is a per-session price simulator.
type Feed struct {
	mu        sync.Mutex
	btc       float64
	eth       float64
	btcHist   *Ring[Point]
	ethHist   *Ring[Point]
	portfolio Portfolio
	total     float64
	rng       *rand.Rand
	interval  time.Duration

	sinks  []Sink
	logger *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

func NewFeed(cfg Config, rng *rand.Rand, logger *zap.Logger, sinks ...Sink) *Feed {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.StartBTC <= 0 {
		cfg.StartBTC = def.StartBTC
	}
	if cfg.StartETH <= 0 {
		cfg.StartETH = def.StartETH
	}
	if cfg.Portfolio == (Portfolio{}) {
		cfg.Portfolio = def.Portfolio
	}
	return &Feed{
		btc:       cfg.StartBTC,
		eth:       cfg.StartETH,
		btcHist:   NewRing[Point](cfg.Capacity),
		ethHist:   NewRing[Point](cfg.Capacity),
		portfolio: cfg.Portfolio,
		total:     cfg.Portfolio.Value(cfg.StartBTC, cfg.StartETH),
		rng:       rng,
		interval:  cfg.Interval,
		sinks:     sinks,
		logger:    logger,
	}
}

func (f *Feed) drift() float64 {
	return 1 + (f.rng.Float64()*2-1)*MaxDrift
}

// Tick advances both prices once and records them under now's HH:MM:SS label.
func (f *Feed) Tick(now time.Time) Quote {
	f.mu.Lock()
	f.btc *= f.drift()
	f.eth *= f.drift()

	label := now.Format("15:04:05")
	f.btcHist.Push(Point{Time: label, Price: f.btc})
	f.ethHist.Push(Point{Time: label, Price: f.eth})
	f.total = f.portfolio.Value(f.btc, f.eth)

	q := Quote{At: now, Label: label, BTC: f.btc, ETH: f.eth, Total: f.total}
	f.mu.Unlock()
	return q
}

func (f *Feed) publish(ctx context.Context, q Quote) {
	for _, s := range f.sinks {
		if err := s.Publish(ctx, q); err != nil {
			f.logger.Warn("failed to publish price tick",
				zap.String("sink", fmt.Sprintf("%T", s)),
				zap.Error(err),
			)
		}
	}
}

// Run ticks every interval until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			f.publish(ctx, f.Tick(now))
		}
	}
}

// Start runs the feed in the background. Calling it again while running, or
// after Close, is a no-op.
func (f *Feed) Start(parent context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil || f.closed {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done
	go func() {
		defer close(done)
		f.Run(ctx)
	}()
	f.logger.Debug("price feed started", zap.Duration("interval", f.interval))
}

// Running reports whether a background loop is active.
func (f *Feed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

// Stop halts the background loop and waits for it to exit. Start may run it again.
func (f *Feed) Stop() {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	f.logger.Debug("price feed stopped")
}

// Close stops the feed for good; later Start calls do nothing.
func (f *Feed) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.Stop()
	return nil
}

// Prices returns the latest BTC and ETH prices.
func (f *Feed) Prices() (btc, eth float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.btc, f.eth
}

func (f *Feed) Total() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// History returns copies of both series, oldest first.
func (f *Feed) History() (btc, eth []Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.btcHist.Items(), f.ethHist.Items()
}
