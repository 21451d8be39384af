package betslip

import (
	"github.com/shopspring/decimal"
)

// Selection is one fixture's chosen pick on the slip.
type Selection struct {
	FixtureID string
	Title     string
	Pick      string
	Price     float64
}

// Betslip is an ordered set of selections, unique by fixture id. It is not
// safe for concurrent use.
type Betslip struct {
	items []Selection
	index map[string]int
}

func New(selections ...Selection) *Betslip {
	b := &Betslip{index: make(map[string]int)}
	for _, sel := range selections {
		if !b.Contains(sel.FixtureID) {
			b.add(sel)
		}
	}
	return b
}

// Toggle adds the selection, or removes the fixture if it is already on the
// slip. It reports whether the fixture is on the slip afterwards.
func (b *Betslip) Toggle(sel Selection) bool {
	if b.Contains(sel.FixtureID) {
		b.Remove(sel.FixtureID)
		return false
	}
	b.add(sel)
	return true
}

func (b *Betslip) Contains(fixtureID string) bool {
	if b.index == nil {
		return false
	}
	_, ok := b.index[fixtureID]
	return ok
}

func (b *Betslip) Remove(fixtureID string) {
	pos, ok := b.index[fixtureID]
	if !ok {
		return
	}
	b.items = append(b.items[:pos], b.items[pos+1:]...)
	delete(b.index, fixtureID)
	for i := pos; i < len(b.items); i++ {
		b.index[b.items[i].FixtureID] = i
	}
}

func (b *Betslip) Selections() []Selection {
	out := make([]Selection, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Betslip) Len() int {
	return len(b.items)
}

func (b *Betslip) Clear() {
	b.items = nil
	b.index = make(map[string]int)
}

// CombinedOdds multiplies every selection price and rounds to cents. An
// empty slip is worth 1.00.
func (b *Betslip) CombinedOdds() decimal.Decimal {
	return Combine(b.prices()...)
}

func (b *Betslip) prices() []float64 {
	out := make([]float64, 0, len(b.items))
	for _, item := range b.items {
		out = append(out, item.Price)
	}
	return out
}

// Combine is the accumulator product of decimal prices, rounded to 2
// places only at the end.
func Combine(prices ...float64) decimal.Decimal {
	total := decimal.NewFromInt(1)
	for _, price := range prices {
		total = total.Mul(decimal.NewFromFloat(price))
	}
	return total.Round(2)
}

func (b *Betslip) add(sel Selection) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	b.index[sel.FixtureID] = len(b.items)
	b.items = append(b.items, sel)
}
