package grid

import (
	"fmt"
	"strings"
)

type Rating string

const (
	Low    Rating = "Low"
	Medium Rating = "Medium"
	High   Rating = "High"
)

// Ratings lists the rating levels in ascending order.
var Ratings = []Rating{Low, Medium, High}

// ParseRating accepts Low/Medium/High in any case, surrounding whitespace ignored.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// Index returns 0, 1 or 2 for Low, Medium and High; -1 for anything else.
func (r Rating) Index() int {
	switch r {
	case Low:
		return 0
	case Medium:
		return 1
	case High:
		return 2
	}
	return -1
}

func (r Rating) Short() string {
	if r == "" {
		return "?"
	}
	return string(r[0])
}

func (r Rating) Valid() bool {
	return r.Index() >= 0
}

// Position is a cell of the 3x3 grid, 1 through 9.
type Position int

func (p Position) Valid() bool {
	return p >= 1 && p <= 9
}

type Tier string

const (
	TierLow    Tier = "low"
	TierMiddle Tier = "middle"
	TierHigh   Tier = "high"
)

// Layout maps (performance, potential) pairs to grid positions and carries the
// human-readable position labels and mover tiers. It is a value type; copies
// share nothing mutable.
type Layout struct {
	names [9]string
	tiers [9]Tier
}

// Standard is the layout used throughout the application: Low/Low = 1 up to
// High/High = 9, row-major by performance then potential.
func Standard() Layout {
	return Layout{
		names: [9]string{
			"Underperformer",
			"Inconsistent",
			"Enigma",
			"Effective Pro",
			"Core Talent",
			"Growth",
			"Workhorse",
			"High Impact",
			"Star",
		},
		tiers: [9]Tier{
			TierLow, TierLow, TierLow, TierLow,
			TierMiddle,
			TierHigh,
			TierMiddle,
			TierHigh, TierHigh,
		},
	}
}

// Position returns the grid cell for the rating pair, or 0 when either rating is invalid.
func (l Layout) Position(performance, potential Rating) Position {
	pi, qi := performance.Index(), potential.Index()
	if pi < 0 || qi < 0 {
		return 0
	}
	return Position(pi*3 + qi + 1)
}

// Ratings is the inverse of Position.
func (l Layout) Ratings(p Position) (performance, potential Rating, err error) {
	if !p.Valid() {
		return "", "", fmt.Errorf("%w: %d", ErrInvalidPosition, p)
	}
	i := int(p) - 1
	return Ratings[i/3], Ratings[i%3], nil
}

// Label formats a position as e.g. "Core Talent [M,M]".
func (l Layout) Label(p Position) string {
	perf, pot, err := l.Ratings(p)
	if err != nil {
		return fmt.Sprintf("Unknown [%d]", p)
	}
	return fmt.Sprintf("%s [%s,%s]", l.names[p-1], perf.Short(), pot.Short())
}

func (l Layout) Tier(p Position) Tier {
	if !p.Valid() {
		return ""
	}
	return l.tiers[p-1]
}

// IsBigMove reports whether a move crosses directly between the low and high tiers.
func (l Layout) IsBigMove(from, to Position) bool {
	a, b := l.Tier(from), l.Tier(to)
	return (a == TierLow && b == TierHigh) || (a == TierHigh && b == TierLow)
}

func (l Layout) Describe(from, to Position) string {
	return fmt.Sprintf("Moved from %s to %s", l.Label(from), l.Label(to))
}
