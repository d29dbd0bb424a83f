package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// HistoryShown is how many recent terms History returns.
const HistoryShown = 5

// Box is one session's search state.
type Box struct {
	mu       sync.Mutex
	products []Product
	term     string
	results  []Product
	history  []string
}

func NewBox(products []Product) *Box {
	if len(products) == 0 {
		products = DefaultProducts()
	}
	return &Box{
		products: products,
		results:  append([]Product(nil), products...),
	}
}

// Filter matches the trimmed, lower-cased term as a substring of name or category.
func Filter(products []Product, term string) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]Product(nil), products...)
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			out = append(out, p)
		}
	}
	return out
}

// Search runs the filter and records non-empty unseen terms in the history.
func (b *Box) Search(term string) []Product {
	norm := strings.ToLower(strings.TrimSpace(term))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.term = norm
	b.results = Filter(b.products, norm)
	if norm != "" && !contains(b.history, norm) {
		b.history = append(b.history, norm)
	}
	return append([]Product(nil), b.results...)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// History returns the most recent terms, oldest first.
func (b *Box) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := len(b.history) - HistoryShown
	if start < 0 {
		start = 0
	}
	return append([]string(nil), b.history[start:]...)
}

func (b *Box) Counter() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return counter(len(b.results), len(b.products))
}

func counter(shown, total int) string {
	return fmt.Sprintf("Showing %d of %d products", shown, total)
}

// ResultView is one rendered product card.
type ResultView struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
}

type View struct {
	Term    string       `json:"term"`
	Results []ResultView `json:"results"`
	Empty   string       `json:"empty,omitempty"`
	History []string     `json:"history"`
	Counter string       `json:"counter"`
}

func (b *Box) Render(_ context.Context) View {
	history := b.History()

	b.mu.Lock()
	defer b.mu.Unlock()
	v := View{
		Term:    b.term,
		Results: make([]ResultView, 0, len(b.results)),
		History: history,
		Counter: counter(len(b.results), len(b.products)),
	}
	for _, p := range b.results {
		v.Results = append(v.Results, ResultView{
			Name:     p.Name,
			Category: p.Category,
			Price:    fmt.Sprintf("$%.2f", p.Price),
		})
	}
	if len(v.Results) == 0 {
		v.Empty = "No results found"
	}
	return v
}

// Close satisfies the session state contract. Box holds no timers.
func (b *Box) Close() error { return nil }
