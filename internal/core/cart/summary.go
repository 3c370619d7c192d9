package cart

import "github.com/zeusync/showroom/internal/core/catalog"

// SummaryLine is a cart line joined with its catalog entry.
type SummaryLine struct {
	Line
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
	Known     bool    `json:"known"`
}

// Summary is what the cart display renders.
type Summary struct {
	Lines      []SummaryLine `json:"lines"`
	TotalCount int           `json:"totalCount"`
	TotalPrice float64       `json:"totalPrice"`
}

// Summarize joins the ledger with the catalog. Stale ids are kept with a zero
// subtotal and Known set to false.
func Summarize(l *Ledger, c *catalog.Catalog) Summary {
	s := Summary{
		Lines:      make([]SummaryLine, 0, l.Len()),
		TotalCount: l.TotalCount(),
		TotalPrice: l.TotalPrice(c),
	}
	for _, line := range l.Lines() {
		sl := SummaryLine{Line: line, Name: line.ProductID}
		if p, ok := c.Find(line.ProductID); ok {
			sl.Name = p.Name
			sl.UnitPrice = p.Price
			sl.Subtotal = p.Price * float64(line.Quantity)
			sl.Known = true
		}
		s.Lines = append(s.Lines, sl)
	}
	return s
}
