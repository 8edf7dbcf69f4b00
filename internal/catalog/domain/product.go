package domain

import "github.com/shopspring/decimal"

// Branch is a physical stock-holding location.
type Branch struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StockEntry is one (branch, quantity) pair owned by a Product.
type StockEntry struct {
	BranchID string `json:"branchId"`
	Quantity int64  `json:"quantity"`
}

// Product is a sellable item with a per-branch quantity breakdown.
// A freshly loaded product may lack entries for branches created after it
// was saved; a missing entry reads as quantity 0.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       []StockEntry    `json:"stock"`
}

// QuantityAt returns the quantity held at the given branch, 0 when the
// product has no entry for it.
func (p Product) QuantityAt(branchID string) int64 {
	for _, e := range p.Stock {
		if e.BranchID == branchID {
			return e.Quantity
		}
	}
	return 0
}

// FirstAvailableBranch returns the first branch, in stored order, holding a
// positive quantity.
func (p Product) FirstAvailableBranch() (string, bool) {
	for _, e := range p.Stock {
		if e.Quantity > 0 {
			return e.BranchID, true
		}
	}
	return "", false
}

// TotalQuantity sums the quantities across all branches.
func (p Product) TotalQuantity() int64 {
	var total int64
	for _, e := range p.Stock {
		total += e.Quantity
	}
	return total
}

// Decrement subtracts amount from the branch's entry. The caller must have
// already validated amount against QuantityAt; Decrement does not clamp.
func (p *Product) Decrement(branchID string, amount int64) {
	for i := range p.Stock {
		if p.Stock[i].BranchID == branchID {
			p.Stock[i].Quantity -= amount
			return
		}
	}
}

// Clone returns a copy whose stock slice is independent of the receiver's.
func (p Product) Clone() Product {
	out := p
	out.Stock = make([]StockEntry, len(p.Stock))
	copy(out.Stock, p.Stock)
	return out
}

// ReconcileStockEntries rebuilds a product's stock so it carries exactly one
// entry per existing branch, in branch-list order: quantities already known
// to the product are preserved, entries for branches that no longer exist
// are dropped, and new branches start at 0.
func ReconcileStockEntries(p Product, branches []Branch) []StockEntry {
	out := make([]StockEntry, 0, len(branches))
	for _, b := range branches {
		out = append(out, StockEntry{BranchID: b.ID, Quantity: p.QuantityAt(b.ID)})
	}
	return out
}
