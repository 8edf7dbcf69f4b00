package app

import (
	"errors"

	"github.com/marcos21288848/stockpos/internal/cart/domain"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrOutOfStock        = errors.New("out of stock at every branch")
	ErrStockInsufficient = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
)

// Violation records one cart line asking for more than its branch currently
// holds. Dangling product or branch references read as availability 0.
type Violation struct {
	ProductID string
	BranchID  string
	Requested int64
	Available int64
}

// Reconciler owns the in-progress cart and turns it into a durable stock
// decrement. Availability is deliberately not enforced while lines are
// added or edited; Commit revalidates every line against current catalog
// state and is the gate of record.
type Reconciler struct {
	catalog CatalogStore
	cart    domain.Cart
}

func NewReconciler(catalog CatalogStore) *Reconciler {
	return &Reconciler{catalog: catalog}
}

// Lines returns a copy of the cart in display order.
func (r *Reconciler) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(r.cart.Lines))
	copy(out, r.cart.Lines)
	return out
}

func (r *Reconciler) Clear() {
	r.cart.Clear()
}

// AddToCart adds one unit of the product. An existing line is incremented
// without an availability check; a new line is bound to the first branch
// holding stock, and the add is refused only when total stock is zero
// everywhere. The cart is left unchanged on any error.
func (r *Reconciler) AddToCart(productID string) error {
	p, ok := r.catalog.Product(productID)
	if !ok {
		return ErrNotFound
	}
	if i := r.cart.Index(p.ID); i >= 0 {
		r.cart.Lines[i].Quantity++
		return nil
	}
	branchID, ok := p.FirstAvailableBranch()
	if !ok {
		return ErrOutOfStock
	}
	r.cart.Lines = append(r.cart.Lines, domain.CartLine{
		ProductID: p.ID,
		Quantity:  1,
		BranchID:  branchID,
	})
	return nil
}

// AddBySKU resolves a case-insensitive exact SKU match (first match wins)
// and adds that product. Used by the point-of-sale scan path.
func (r *Reconciler) AddBySKU(sku string) error {
	p, ok := r.catalog.ProductBySKU(sku)
	if !ok {
		return ErrNotFound
	}
	return r.AddToCart(p.ID)
}

// LineUpdate carries the optional fields of an UpdateLine call; nil fields
// are left unchanged.
type LineUpdate struct {
	Quantity *int64
	BranchID *string
}

// UpdateLine edits an existing line. Quantities are clamped at 0 rather
// than rejected, since the UI feeds this from freeform numeric input; a
// line reaching 0 is removed, never kept at zero. A missing line is a no-op.
func (r *Reconciler) UpdateLine(productID string, upd LineUpdate) {
	i := r.cart.Index(productID)
	if i < 0 {
		return
	}
	if upd.Quantity != nil {
		q := *upd.Quantity
		if q < 0 {
			q = 0
		}
		r.cart.Lines[i].Quantity = q
	}
	if upd.BranchID != nil {
		r.cart.Lines[i].BranchID = *upd.BranchID
	}
	if r.cart.Lines[i].Quantity == 0 {
		r.cart.Remove(productID)
	}
}

// ValidateForCommit checks every line against the quantity currently
// available at its branch. Pure: no state is touched.
func (r *Reconciler) ValidateForCommit() []Violation {
	var out []Violation
	for _, ln := range r.cart.Lines {
		var available int64
		if p, ok := r.catalog.Product(ln.ProductID); ok {
			available = p.QuantityAt(ln.BranchID)
		}
		if ln.Quantity > available {
			out = append(out, Violation{
				ProductID: ln.ProductID,
				BranchID:  ln.BranchID,
				Requested: ln.Quantity,
				Available: available,
			})
		}
	}
	return out
}

// Commit revalidates and, only when every line clears, decrements stock for
// all lines against the current catalog and empties the cart. Any violation
// aborts the whole sale: stock and cart are left exactly as they were so
// the clerk can adjust quantities or branch assignment and retry.
func (r *Reconciler) Commit() ([]Violation, error) {
	if r.cart.Empty() {
		return nil, ErrEmptyCart
	}
	if vs := r.ValidateForCommit(); len(vs) > 0 {
		return vs, ErrStockInsufficient
	}
	for _, ln := range r.cart.Lines {
		r.catalog.DecrementStock(ln.ProductID, ln.BranchID, ln.Quantity)
	}
	r.cart.Clear()
	return nil, nil
}
