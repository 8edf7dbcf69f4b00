package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/marcos21288848/stockpos/internal/catalog/domain"
)

// ErrCorruptBlob reports a blob that exists but cannot be decoded. The
// loader substitutes that blob's default and carries on; the caller decides
// how loudly to report it.
var ErrCorruptBlob = errors.New("snapshot: corrupt blob")

// DefaultCurrency is used when no currency blob has ever been saved.
const DefaultCurrency = "USD"

// DefaultBranches seeds a catalog that has never been saved. The branch
// floor invariant requires at least one.
func DefaultBranches() []domain.Branch {
	return []domain.Branch{{ID: "main", Name: "Main Branch"}}
}

// State is everything that survives a restart. The cart is deliberately
// absent: pending reservations die with the session.
type State struct {
	Branches []domain.Branch
	Products []domain.Product
	Currency string
}

const (
	keyProducts = "products"
	keyBranches = "branches"
	keyCurrency = "currency"
)

func blobKey(name, blob string) string {
	return name + "/" + blob
}

// Save writes the three blobs under the logical store name. The blobs are
// written concurrently; the first failure is returned but does not stop the
// others, so a partial save converges on the next successful one.
func Save(ctx context.Context, store Store, name string, st State) error {
	products, err := json.Marshal(st.Products)
	if err != nil {
		return fmt.Errorf("snapshot: encode products: %w", err)
	}
	branches, err := json.Marshal(st.Branches)
	if err != nil {
		return fmt.Errorf("snapshot: encode branches: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Put(ctx, blobKey(name, keyProducts), products) })
	g.Go(func() error { return store.Put(ctx, blobKey(name, keyBranches), branches) })
	g.Go(func() error { return store.Put(ctx, blobKey(name, keyCurrency), []byte(st.Currency)) })
	return g.Wait()
}

// Load reads the three blobs, falling back per blob: an absent branches
// blob seeds DefaultBranches, an absent products blob yields an empty
// catalog, an absent currency defaults to DefaultCurrency. A blob that is
// present but unreadable or undecodable falls back the same way, and the
// returned error (wrapping ErrCorruptBlob for decode failures) says which
// blobs were lost. The returned State is always usable.
func Load(ctx context.Context, store Store, name string) (State, error) {
	st := State{
		Branches: DefaultBranches(),
		Currency: DefaultCurrency,
	}

	var productsErr, branchesErr, currencyErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var products []domain.Product
		productsErr = loadJSON(gctx, store, blobKey(name, keyProducts), &products)
		if productsErr == nil {
			st.Products = products
		}
		return nil
	})
	g.Go(func() error {
		var branches []domain.Branch
		branchesErr = loadJSON(gctx, store, blobKey(name, keyBranches), &branches)
		if branchesErr == nil && len(branches) > 0 {
			st.Branches = branches
		}
		return nil
	})
	g.Go(func() error {
		data, err := store.Get(gctx, blobKey(name, keyCurrency))
		if errors.Is(err, ErrNoBlob) {
			return nil
		}
		if err != nil {
			currencyErr = err
			return nil
		}
		if code := strings.TrimSpace(string(data)); code != "" {
			st.Currency = code
		}
		return nil
	})
	_ = g.Wait()

	return st, errors.Join(productsErr, branchesErr, currencyErr)
}

func loadJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := store.Get(ctx, key)
	if errors.Is(err, ErrNoBlob) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptBlob, key, err)
	}
	return nil
}
