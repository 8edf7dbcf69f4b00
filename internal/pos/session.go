// Package pos wires the catalog, the cart reconciler, persistence and the
// scanner into one point-of-sale session: a single owned aggregate holding
// branches, products, cart and currency. All mutations run on one logical
// writer and the full snapshot is saved after every state change.
package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	cartapp "github.com/marcos21288848/stockpos/internal/cart/app"
	cartdomain "github.com/marcos21288848/stockpos/internal/cart/domain"
	catalogapp "github.com/marcos21288848/stockpos/internal/catalog/app"
	catalogdomain "github.com/marcos21288848/stockpos/internal/catalog/domain"
	"github.com/marcos21288848/stockpos/internal/scan"
	"github.com/marcos21288848/stockpos/internal/snapshot"
	"github.com/marcos21288848/stockpos/pkg/config"
)

type Options struct {
	Store snapshot.Store
	// Name keys the snapshot blobs; two sessions with different names do
	// not see each other's state.
	Name string
	// Currency applies only to a store that has never been saved.
	Currency string
	Notifier Notifier
	Log      *slog.Logger
}

// Session is the aggregate every user action goes through.
type Session struct {
	catalog  *catalogapp.Service
	cart     *cartapp.Reconciler
	currency string

	search    string
	editingID string
	form      catalogapp.ProductInput

	store    snapshot.Store
	name     string
	notifier Notifier
	log      *slog.Logger
}

// Open restores the session from its snapshot. Per-blob load failures fall
// back to defaults and are reported, never fatal: the user can keep working
// and the next save reconciles.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Store == nil {
		opts.Store = snapshot.NewMemStore()
	}
	if opts.Name == "" {
		opts.Name = "default"
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier(opts.Log)
	}

	st, err := snapshot.Load(ctx, opts.Store, opts.Name)
	if err != nil {
		opts.Log.Warn("snapshot load fell back to defaults", "store", opts.Name, "err", err)
		opts.Notifier.Notify(Notice{Level: LevelError, Message: "some saved data could not be read and was reset"})
	}
	if opts.Currency != "" && st.Currency == snapshot.DefaultCurrency {
		st.Currency = opts.Currency
	}

	catalog := catalogapp.NewService()
	catalog.SetState(st.Branches, st.Products)

	return &Session{
		catalog:  catalog,
		cart:     cartapp.NewReconciler(catalog),
		currency: st.Currency,
		store:    opts.Store,
		name:     opts.Name,
		notifier: opts.Notifier,
		log:      opts.Log,
	}, nil
}

// OpenFromConfig picks the snapshot backend from configuration: Postgres
// when a database URL is set, files under the data dir otherwise.
func OpenFromConfig(ctx context.Context, cfg config.Config, log *slog.Logger, n Notifier) (*Session, error) {
	var store snapshot.Store
	if cfg.DatabaseURL != "" {
		pg, err := snapshot.OpenPG(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = pg
	} else {
		store = snapshot.NewFileStore(cfg.DataDir)
	}
	return Open(ctx, Options{
		Store:    store,
		Name:     cfg.StoreName,
		Currency: cfg.Currency,
		Notifier: n,
		Log:      log,
	})
}

// Catalog exposes the read side for the presentation layer.
func (s *Session) Catalog() *catalogapp.Service { return s.catalog }

func (s *Session) Currency() string { return s.currency }

// SetCurrency changes the display currency code. Codes are stored verbatim
// apart from trimming and upper-casing; conversion is out of scope.
func (s *Session) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return s.fail(catalogapp.ErrValidation, "currency code is required")
	}
	s.currency = code
	s.save(ctx)
	return nil
}

// UpsertProduct creates or edits a product and persists the result.
func (s *Session) UpsertProduct(ctx context.Context, in catalogapp.ProductInput, editingID string) (catalogdomain.Product, error) {
	p, err := s.catalog.UpsertProduct(in, editingID)
	if err != nil {
		return catalogdomain.Product{}, s.fail(err, "product name and SKU are required")
	}
	s.save(ctx)
	return p, nil
}

// DeleteProduct removes a product. If it was the one being edited, the edit
// session is cleared as well.
func (s *Session) DeleteProduct(ctx context.Context, id string) error {
	if err := s.catalog.DeleteProduct(id); err != nil {
		return s.fail(err, "product no longer exists")
	}
	if s.editingID == id {
		s.CancelEdit()
	}
	s.save(ctx)
	return nil
}

func (s *Session) AddBranch(ctx context.Context, name string) (catalogdomain.Branch, error) {
	b, err := s.catalog.AddBranch(name)
	if err != nil {
		return catalogdomain.Branch{}, s.fail(err, "branch name is required")
	}
	s.save(ctx)
	return b, nil
}

// DeleteBranch removes a branch and its stock entries. Cart lines bound to
// it are left alone; they surface as violations at the next checkout.
func (s *Session) DeleteBranch(ctx context.Context, id string) error {
	err := s.catalog.DeleteBranch(id)
	switch {
	case errors.Is(err, catalogapp.ErrLastBranch):
		return s.fail(err, "at least one branch must remain")
	case errors.Is(err, catalogapp.ErrNotFound):
		return s.fail(err, "branch no longer exists")
	case err != nil:
		return s.fail(err, err.Error())
	}
	s.save(ctx)
	return nil
}

// AddToCart adds one unit of a product. Cart edits touch no persisted
// state, so nothing is saved until checkout.
func (s *Session) AddToCart(productID string) error {
	err := s.cart.AddToCart(productID)
	switch {
	case errors.Is(err, cartapp.ErrOutOfStock):
		return s.fail(err, "product is out of stock at every branch")
	case errors.Is(err, cartapp.ErrNotFound):
		return s.fail(err, "product no longer exists")
	}
	return err
}

func (s *Session) UpdateCartLine(productID string, upd cartapp.LineUpdate) {
	s.cart.UpdateLine(productID, upd)
}

func (s *Session) CartLines() []cartdomain.CartLine { return s.cart.Lines() }

func (s *Session) ClearCart() { s.cart.Clear() }

// Checkout commits the cart. A sale that clears validation decrements stock
// and is persisted; any shortfall aborts the whole sale with the cart and
// stock untouched, and each offending line is reported.
func (s *Session) Checkout(ctx context.Context) ([]cartapp.Violation, error) {
	violations, err := s.cart.Commit()
	if errors.Is(err, cartapp.ErrEmptyCart) {
		return nil, s.fail(err, "nothing in the cart")
	}
	if err != nil {
		for _, v := range violations {
			msg := fmt.Sprintf("insufficient stock: requested %d, only %d available", v.Requested, v.Available)
			if p, ok := s.catalog.Product(v.ProductID); ok {
				msg = fmt.Sprintf("insufficient stock for %s: requested %d, only %d available", p.Name, v.Requested, v.Available)
			}
			s.notifier.Notify(Notice{Level: LevelError, Message: msg})
		}
		return violations, err
	}
	s.save(ctx)
	return nil, nil
}

// SetSearch updates the catalog search filter consumed by View.
func (s *Session) SetSearch(q string) { s.search = q }

func (s *Session) Search() string { return s.search }

// View projects the catalog through the current search filter.
func (s *Session) View(sortKey catalogapp.SortKey, desc bool) catalogapp.View {
	return s.catalog.View(catalogapp.ViewQuery{Filter: s.search, Sort: sortKey, Desc: desc})
}

// BeginEdit loads a product into the form and marks it as the edit target.
func (s *Session) BeginEdit(id string) error {
	p, ok := s.catalog.Product(id)
	if !ok {
		return s.fail(catalogapp.ErrNotFound, "product no longer exists")
	}
	quantities := make(map[string]int64, len(p.Stock))
	for _, e := range p.Stock {
		quantities[e.BranchID] = e.Quantity
	}
	s.editingID = p.ID
	s.form = catalogapp.ProductInput{
		Name:        p.Name,
		SKU:         p.SKU,
		Price:       p.Price,
		Description: p.Description,
		Quantities:  quantities,
	}
	return nil
}

func (s *Session) CancelEdit() {
	s.editingID = ""
	s.form = catalogapp.ProductInput{}
}

func (s *Session) EditingID() string { return s.editingID }

func (s *Session) Form() catalogapp.ProductInput { return s.form }

func (s *Session) SetForm(in catalogapp.ProductInput) { s.form = in }

// SubmitForm upserts the current form draft and, on success, resets the
// form and edit session.
func (s *Session) SubmitForm(ctx context.Context) (catalogdomain.Product, error) {
	p, err := s.UpsertProduct(ctx, s.form, s.editingID)
	if err != nil {
		return catalogdomain.Product{}, err
	}
	s.CancelEdit()
	return p, nil
}

// HandleScan feeds one scan outcome back through the single-writer path. A
// canceled scan changes nothing and stays quiet; other scan failures are
// reported. Decoded codes dispatch per target: the product form's SKU
// field, the catalog search filter, or a point-of-sale SKU lookup.
func (s *Session) HandleScan(target scan.Target, res scan.Result) {
	if res.Err != nil {
		if errors.Is(res.Err, scan.ErrCanceled) {
			return
		}
		s.notifier.Notify(Notice{Level: LevelError, Message: "scan failed: " + res.Err.Error()})
		return
	}

	switch target {
	case scan.TargetCatalogForm:
		s.form.SKU = res.Code
	case scan.TargetCatalogSearch:
		s.search = res.Code
	case scan.TargetPointOfSale:
		if err := s.cart.AddBySKU(res.Code); err != nil {
			switch {
			case errors.Is(err, cartapp.ErrNotFound):
				s.notifier.Notify(Notice{Level: LevelWarn, Message: "no product with SKU " + res.Code})
			case errors.Is(err, cartapp.ErrOutOfStock):
				s.notifier.Notify(Notice{Level: LevelWarn, Message: "product is out of stock at every branch"})
			}
		}
	default:
		s.log.Warn("scan result for unknown target", "target", string(target))
	}
}

// save persists the whole snapshot. Failures are reported but never rolled
// back: in-memory state stays the source of truth and the next successful
// save reconciles.
func (s *Session) save(ctx context.Context) {
	st := snapshot.State{
		Branches: s.catalog.Branches(),
		Products: s.catalog.Products(),
		Currency: s.currency,
	}
	if err := snapshot.Save(ctx, s.store, s.name, st); err != nil {
		s.log.Warn("snapshot save failed", "store", s.name, "err", err)
		s.notifier.Notify(Notice{Level: LevelError, Message: "changes could not be saved; they remain in memory"})
	}
}

func (s *Session) fail(err error, msg string) error {
	s.notifier.Notify(Notice{Level: LevelError, Message: msg})
	return err
}
