package car

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrOverBudget blocks saving a design that costs more than the budget.
	ErrOverBudget = errors.New("over budget")
	// ErrDesignNotFound is returned for saved design ids that do not exist.
	ErrDesignNotFound = errors.New("saved design not found")
	// ErrUnknownPreset is returned for gallery names that do not exist.
	ErrUnknownPreset = errors.New("unknown preset")
)

// DefaultBudget is the spending limit for saving a design.
const DefaultBudget = 50000

// SavedDesign is a design captured by Save.
type SavedDesign struct {
	ID      string    `json:"id"`
	Owner   string    `json:"-"`
	Name    string    `json:"name"`
	Design  Design    `json:"design"`
	Price   int       `json:"price"`
	SavedAt time.Time `json:"saved_at"`
}

// DesignStore persists saved designs per owner.
type DesignStore interface {
	Create(ctx context.Context, d *SavedDesign) (string, error)
	List(ctx context.Context, owner string) ([]SavedDesign, error)
	Get(ctx context.Context, owner, id string) (*SavedDesign, error)
	Delete(ctx context.Context, owner, id string) error
}

// Studio is one user's configurator state.
type Studio struct {
	mu     sync.Mutex
	owner  string
	design Design
	budget int
	store  DesignStore
	rng    *rand.Rand
	now    func() time.Time
	logger *zap.Logger
}

func NewStudio(owner string, budget int, store DesignStore, rng *rand.Rand, logger *zap.Logger) *Studio {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Studio{
		owner:  owner,
		design: DefaultDesign(),
		budget: budget,
		store:  store,
		rng:    rng,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Studio) Design() Design {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.design
}

func (s *Studio) Budget() int { return s.budget }

// Select sets the option of one category after checking it against the catalog.
func (s *Studio) Select(c Category, id string) (Option, error) {
	cat, err := CatalogFor(c)
	if err != nil {
		return Option{}, err
	}
	opt, err := cat.Lookup(id)
	if err != nil {
		return Option{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.design.setChoice(c, id)
	return opt, nil
}

// SetColor sets one of body, roof, wheel or window colors.
func (s *Studio) SetColor(part, hex string) error {
	if _, _, _, err := parseHex(hex); err != nil || !strings.HasPrefix(hex, "#") {
		return fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch part {
	case "body":
		s.design.BodyColor = hex
	case "roof":
		s.design.RoofColor = hex
	case "wheel":
		s.design.WheelColor = hex
	case "window":
		s.design.WindowTint = hex
	default:
		return fmt.Errorf("color part %q: %w", part, ErrUnknownOption)
	}
	return nil
}

func (s *Studio) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.design.Name = name
}

func (s *Studio) Price() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := Price(s.design)
	return p
}

// OverBudgetBy returns how far the current price exceeds the budget (0 when within).
func (s *Studio) OverBudgetBy() int {
	if over := s.Price() - s.budget; over > 0 {
		return over
	}
	return 0
}

// Save stores the current design unless it is over budget.
func (s *Studio) Save(ctx context.Context) (*SavedDesign, error) {
	s.mu.Lock()
	d := s.design
	s.mu.Unlock()

	price, err := Price(d)
	if err != nil {
		return nil, err
	}
	if price > s.budget {
		return nil, fmt.Errorf("%w by $%d", ErrOverBudget, price-s.budget)
	}

	saved := &SavedDesign{
		Owner:   s.owner,
		Name:    d.Name,
		Design:  d,
		Price:   price,
		SavedAt: s.now(),
	}
	id, err := s.store.Create(ctx, saved)
	if err != nil {
		return nil, fmt.Errorf("failed to save design: %w", err)
	}
	saved.ID = id
	s.logger.Info("car design saved",
		zap.String("owner", s.owner),
		zap.String("design_id", id),
		zap.Int("price", price),
	)
	return saved, nil
}

func (s *Studio) Saved(ctx context.Context) ([]SavedDesign, error) {
	return s.store.List(ctx, s.owner)
}

func (s *Studio) LoadSaved(ctx context.Context, id string) (Design, error) {
	saved, err := s.store.Get(ctx, s.owner, id)
	if err != nil {
		return Design{}, err
	}
	if err := saved.Design.Validate(); err != nil {
		return Design{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.design = saved.Design
	return s.design, nil
}

func (s *Studio) DeleteSaved(ctx context.Context, id string) error {
	return s.store.Delete(ctx, s.owner, id)
}

func (s *Studio) LoadPreset(name string) (Design, error) {
	for _, p := range presets {
		if p.Name == name {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.design = p.Apply(s.design)
			return s.design, nil
		}
	}
	return Design{}, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
}

func (s *Studio) Randomize() Design {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.design = RandomDesign(s.rng, s.design)
	return s.design
}

func (s *Studio) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.design = DefaultDesign()
}

// View is the rendered studio page.
type View struct {
	Design        Design                `json:"design"`
	Symbol        string                `json:"symbol"`
	DecalSymbol   string                `json:"decal_symbol,omitempty"`
	SpoilerSymbol string                `json:"spoiler_symbol,omitempty"`
	Breakdown     []LineItem            `json:"breakdown"`
	Total         int                   `json:"total"`
	Budget        int                   `json:"budget"`
	OverBudgetBy  int                   `json:"over_budget_by"`
	Stats         Performance           `json:"stats"`
	Catalogs      map[Category][]Option `json:"catalogs"`
	Presets       []Preset              `json:"presets"`
	Saved         []SavedDesign         `json:"saved"`
}

// Render rebuilds the page from the current design.
func (s *Studio) Render(ctx context.Context) (View, error) {
	d := s.Design()
	items, err := Breakdown(d)
	if err != nil {
		return View{}, err
	}
	saved, err := s.Saved(ctx)
	if err != nil {
		return View{}, err
	}

	v := View{
		Design:    d,
		Breakdown: items,
		Budget:    s.budget,
		Stats:     Stats(d),
		Presets:   Presets(),
		Saved:     saved,
		Catalogs:  make(map[Category][]Option, 4),
	}
	for _, it := range items {
		v.Total += it.Option.Price
		switch it.Category {
		case CategoryBody:
			v.Symbol = it.Option.Symbol
		case CategoryDecal:
			v.DecalSymbol = it.Option.Symbol
		case CategorySpoiler:
			v.SpoilerSymbol = it.Option.Symbol
		}
	}
	if v.Total > v.Budget {
		v.OverBudgetBy = v.Total - v.Budget
	}
	for _, c := range Categories() {
		cat, _ := CatalogFor(c)
		v.Catalogs[c] = cat.Options()
	}
	return v, nil
}

// Close satisfies the session state contract. The studio owns no timers.
func (s *Studio) Close() error { return nil }
