package thermo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrNotNumber is returned for input that does not parse as a number.
	ErrNotNumber   = errors.New("please enter a valid number")
	ErrUnknownUnit = errors.New("unknown temperature unit")
)

type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
	Kelvin
)

var (
	unitNames   = [...]string{"celsius", "fahrenheit", "kelvin"}
	unitSymbols = [...]string{"°C", "°F", "K"}
	unitLabels  = [...]string{"Celsius", "Fahrenheit", "Kelvin"}
)

func Units() []Unit { return []Unit{Celsius, Fahrenheit, Kelvin} }

func (u Unit) Valid() bool { return u >= Celsius && u <= Kelvin }

func (u Unit) String() string {
	if !u.Valid() {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitNames[u]
}

func (u Unit) Symbol() string {
	if !u.Valid() {
		return ""
	}
	return unitSymbols[u]
}

func (u Unit) Label() string {
	if !u.Valid() {
		return ""
	}
	return unitLabels[u]
}

// ParseUnit accepts the unit name, its first letter or its symbol, in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "c", "°c":
		return Celsius, nil
	case "fahrenheit", "f", "°f":
		return Fahrenheit, nil
	case "kelvin", "k":
		return Kelvin, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Reading is one converted value.
type Reading struct {
	Unit  Unit    `json:"-"`
	Name  string  `json:"unit"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

func newReading(u Unit, v float64) Reading {
	v = round2(v)
	return Reading{Unit: u, Name: u.String(), Value: v, Text: fmt.Sprintf("%.2f %s", v, u.Symbol())}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toCelsius(v float64, from Unit) float64 {
	switch from {
	case Fahrenheit:
		return (v - 32) * 5 / 9
	case Kelvin:
		return v - 273.15
	default:
		return v
	}
}

func fromCelsius(c float64, to Unit) float64 {
	switch to {
	case Fahrenheit:
		return c*9/5 + 32
	case Kelvin:
		return c + 273.15
	default:
		return c
	}
}

// Convert returns value expressed in the two units other than from.
func Convert(value float64, from Unit) ([]Reading, error) {
	if !from.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, int(from))
	}
	c := toCelsius(value, from)
	out := make([]Reading, 0, 2)
	for _, u := range Units() {
		if u == from {
			continue
		}
		out = append(out, newReading(u, fromCelsius(c, u)))
	}
	return out, nil
}

// ParseAndConvert parses text as a number and converts it.
func ParseAndConvert(text string, from Unit) ([]Reading, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %q", ErrNotNumber, text)
	}
	return Convert(v, from)
}

// Panel keeps the last result shown for each unit.
type Panel struct {
	mu      sync.Mutex
	input   string
	from    Unit
	results map[Unit]string
}

func NewPanel() *Panel {
	return &Panel{
		input: "0",
		from:  Celsius,
		results: map[Unit]string{
			Celsius:    "---",
			Fahrenheit: "32.00 °F",
			Kelvin:     "273.15 K",
		},
	}
}

// Submit converts text and updates the panel. Bad input leaves it unchanged.
func (p *Panel) Submit(text string, from Unit) ([]Reading, error) {
	readings, err := ParseAndConvert(text, from)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = strings.TrimSpace(text)
	p.from = from
	for _, r := range readings {
		p.results[r.Unit] = r.Text
	}
	return readings, nil
}

type ResultLine struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type View struct {
	Input   string       `json:"input"`
	From    string       `json:"from"`
	Units   []string     `json:"units"`
	Results []ResultLine `json:"results"`
}

func (p *Panel) Render(_ context.Context) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := View{Input: p.input, From: p.from.String()}
	for _, u := range Units() {
		v.Units = append(v.Units, fmt.Sprintf("%s (%s)", u.Label(), u.Symbol()))
		v.Results = append(v.Results, ResultLine{Label: u.Label() + ":", Text: p.results[u]})
	}
	return v
}

func (p *Panel) Close() error { return nil }
