package app

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marcos21288848/stockpos/internal/catalog/domain"
)

var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrLastBranch = errors.New("cannot delete the last branch")
)

// ProductInput carries the user-supplied fields of a product create or edit.
// Quantities maps branch id to the quantity held there; branches missing
// from the map default to 0, unknown branch ids are dropped.
type ProductInput struct {
	Name        string
	SKU         string
	Price       decimal.Decimal
	Description string
	Quantities  map[string]int64
}

// Service owns the catalog: the branch list, the product list and the stock
// entries embedded in each product. All mutations run on a single logical
// writer; the service does not lock.
type Service struct {
	branches []domain.Branch
	products []domain.Product
	newID    func() string
}

func NewService() *Service {
	return &Service{newID: uuid.NewString}
}

// SetIDGenerator overrides fresh-id generation, used by tests that need
// deterministic ids.
func (s *Service) SetIDGenerator(gen func() string) {
	s.newID = gen
}

// SetState replaces the whole catalog, used when restoring a snapshot.
// Loaded products are not reconciled against the branch list here: a product
// saved before a branch existed simply reads as quantity 0 there until its
// next upsert.
func (s *Service) SetState(branches []domain.Branch, products []domain.Product) {
	s.branches = branches
	s.products = products
}

// Branches returns a copy of the branch list in creation order.
func (s *Service) Branches() []domain.Branch {
	out := make([]domain.Branch, len(s.branches))
	copy(out, s.branches)
	return out
}

// Products returns a deep copy of the product list in insertion order.
func (s *Service) Products() []domain.Product {
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	return out
}

// Product resolves a product by id.
func (s *Service) Product(id string) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Product{}, false
}

// ProductBySKU resolves a product by case-insensitive exact SKU match.
// SKUs are not required to be unique; the first match in insertion order
// wins.
func (s *Service) ProductBySKU(sku string) (domain.Product, bool) {
	for _, p := range s.products {
		if strings.EqualFold(p.SKU, sku) {
			return p.Clone(), true
		}
	}
	return domain.Product{}, false
}

// UpsertProduct validates the input and either replaces the product named by
// editingID in place, or appends a new product with a fresh id when
// editingID is empty or no longer resolves. The stock entries are rebuilt
// from the current branch list on every upsert.
func (s *Service) UpsertProduct(in ProductInput, editingID string) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	sku := strings.TrimSpace(in.SKU)
	if name == "" || sku == "" {
		return domain.Product{}, ErrValidation
	}
	if in.Price.IsNegative() {
		return domain.Product{}, ErrValidation
	}

	stock := make([]domain.StockEntry, 0, len(s.branches))
	for _, b := range s.branches {
		q := in.Quantities[b.ID]
		if q < 0 {
			q = 0
		}
		stock = append(stock, domain.StockEntry{BranchID: b.ID, Quantity: q})
	}

	p := domain.Product{
		Name:        name,
		SKU:         sku,
		Price:       in.Price,
		Description: in.Description,
		Stock:       stock,
	}

	if editingID != "" {
		for i := range s.products {
			if s.products[i].ID == editingID {
				p.ID = editingID
				s.products[i] = p
				return p.Clone(), nil
			}
		}
	}

	p.ID = s.newID()
	s.products = append(s.products, p)
	return p.Clone(), nil
}

// DeleteProduct removes the product. Nothing else references products, so
// there is no cascade.
func (s *Service) DeleteProduct(id string) error {
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// AddBranch creates a branch with a fresh id and appends a zero stock entry
// for it to every existing product.
func (s *Service) AddBranch(name string) (domain.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Branch{}, ErrValidation
	}

	b := domain.Branch{ID: s.newID(), Name: name}
	s.branches = append(s.branches, b)
	s.reconcileAll()
	return b, nil
}

// DeleteBranch removes the branch and its stock entry from every product.
// The last remaining branch cannot be deleted. Cart lines still bound to
// the deleted branch are not touched here; they read as availability 0 at
// the next cart validation.
func (s *Service) DeleteBranch(id string) error {
	idx := -1
	for i := range s.branches {
		if s.branches[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	if len(s.branches) == 1 {
		return ErrLastBranch
	}

	s.branches = append(s.branches[:idx], s.branches[idx+1:]...)
	s.reconcileAll()
	return nil
}

// DecrementStock subtracts amount from one product's branch entry. Only the
// cart reconciler calls this, and only after commit validation has passed.
func (s *Service) DecrementStock(productID, branchID string, amount int64) {
	for i := range s.products {
		if s.products[i].ID == productID {
			s.products[i].Decrement(branchID, amount)
			return
		}
	}
}

func (s *Service) reconcileAll() {
	for i := range s.products {
		s.products[i].Stock = domain.ReconcileStockEntries(s.products[i], s.branches)
	}
}
