// Package cart keeps the quantity-counted list of products a visitor picked.
package cart

import "fmt"

// Line is one product in the cart. Quantity is always at least 1.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// PriceLookup resolves unit prices. Unknown ids report false.
type PriceLookup interface {
	Price(productID string) (float64, bool)
}

// ChangeFunc receives a snapshot of the lines after every mutation.
type ChangeFunc func(lines []Line)

// Ledger is owned by a single goroutine; it is not safe for concurrent use.
type Ledger struct {
	order    []string
	quantity map[string]int
	onChange ChangeFunc
}

func NewLedger() *Ledger {
	return &Ledger{quantity: make(map[string]int)}
}

// OnChange installs the mutation hook, replacing any previous one.
func (l *Ledger) OnChange(fn ChangeFunc) {
	l.onChange = fn
}

// Add increments productID, creating the line at 1 if needed.
func (l *Ledger) Add(productID string) {
	if _, ok := l.quantity[productID]; !ok {
		l.order = append(l.order, productID)
	}
	l.quantity[productID]++
	l.changed()
}

// Remove deletes the whole line, whatever its quantity. Absent ids are a no-op.
func (l *Ledger) Remove(productID string) {
	if _, ok := l.quantity[productID]; !ok {
		return
	}
	delete(l.quantity, productID)
	for i, id := range l.order {
		if id == productID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.changed()
}

// Clear empties the cart.
func (l *Ledger) Clear() {
	l.order = nil
	l.quantity = make(map[string]int)
	l.changed()
}

// Quantity returns the count for productID, zero if absent.
func (l *Ledger) Quantity(productID string) int {
	return l.quantity[productID]
}

// Lines returns the lines in first-added order.
func (l *Ledger) Lines() []Line {
	lines := make([]Line, 0, len(l.order))
	for _, id := range l.order {
		lines = append(lines, Line{ProductID: id, Quantity: l.quantity[id]})
	}
	return lines
}

// Len returns the number of distinct lines.
func (l *Ledger) Len() int { return len(l.order) }

// TotalCount sums all quantities.
func (l *Ledger) TotalCount() int {
	total := 0
	for _, q := range l.quantity {
		total += q
	}
	return total
}

// TotalPrice sums quantity × unit price. Lines the catalog does not know
// contribute nothing.
func (l *Ledger) TotalPrice(prices PriceLookup) float64 {
	total := 0.0
	for _, id := range l.order {
		if price, ok := prices.Price(id); ok {
			total += price * float64(l.quantity[id])
		}
	}
	return total
}

func (l *Ledger) changed() {
	if l.onChange != nil {
		l.onChange(l.Lines())
	}
}

// FormatPrice renders a price the way the cart display shows it.
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}
