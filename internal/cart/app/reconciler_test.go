package app_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	cartapp "github.com/marcos21288848/stockpos/internal/cart/app"
	catalogapp "github.com/marcos21288848/stockpos/internal/catalog/app"
	catalogdomain "github.com/marcos21288848/stockpos/internal/catalog/domain"
)

type fixture struct {
	catalog *catalogapp.Service
	cart    *cartapp.Reconciler
	main    catalogdomain.Branch
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog := catalogapp.NewService()
	main, err := catalog.AddBranch("Main")
	require.NoError(t, err)
	return &fixture{
		catalog: catalog,
		cart:    cartapp.NewReconciler(catalog),
		main:    main,
	}
}

func (f *fixture) addProduct(t *testing.T, name, sku string, quantities map[string]int64) catalogdomain.Product {
	t.Helper()
	p, err := f.catalog.UpsertProduct(catalogapp.ProductInput{
		Name:       name,
		SKU:        sku,
		Quantities: quantities,
	}, "")
	require.NoError(t, err)
	return p
}

func TestAddToCart(t *testing.T) {
	t.Run("unknown product is a reported no-op", func(t *testing.T) {
		f := newFixture(t)
		err := f.cart.AddToCart("ghost")
		require.ErrorIs(t, err, cartapp.ErrNotFound)
		require.Empty(t, f.cart.Lines())
	})

	t.Run("new line binds to first available branch", func(t *testing.T) {
		f := newFixture(t)
		second, err := f.catalog.AddBranch("Second")
		require.NoError(t, err)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 0, second.ID: 3})

		require.NoError(t, f.cart.AddToCart(p.ID))
		lines := f.cart.Lines()
		require.Len(t, lines, 1)
		require.Equal(t, second.ID, lines[0].BranchID)
		require.EqualValues(t, 1, lines[0].Quantity)
	})

	t.Run("zero stock everywhere is refused", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", nil)
		require.ErrorIs(t, f.cart.AddToCart(p.ID), cartapp.ErrOutOfStock)
		require.Empty(t, f.cart.Lines())
	})

	t.Run("repeat adds merge into one line", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 10})

		require.NoError(t, f.cart.AddToCart(p.ID))
		require.NoError(t, f.cart.AddToCart(p.ID))

		lines := f.cart.Lines()
		require.Len(t, lines, 1)
		require.EqualValues(t, 2, lines[0].Quantity)
	})

	t.Run("merge skips the availability check", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 1})

		// Scanning past the on-hand quantity is allowed; commit is the gate.
		for i := 0; i < 5; i++ {
			require.NoError(t, f.cart.AddToCart(p.ID))
		}
		require.EqualValues(t, 5, f.cart.Lines()[0].Quantity)
	})
}

func TestAddBySKU(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Pen", "PN-1", map[string]int64{f.main.ID: 2})

	require.NoError(t, f.cart.AddBySKU("pn-1"))
	require.Equal(t, p.ID, f.cart.Lines()[0].ProductID)

	require.ErrorIs(t, f.cart.AddBySKU("PN-"), cartapp.ErrNotFound)
}

func TestUpdateLine(t *testing.T) {
	qty := func(n int64) *int64 { return &n }
	branch := func(id string) *string { return &id }

	t.Run("sets quantity, leaves branch", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 10})
		require.NoError(t, f.cart.AddToCart(p.ID))

		f.cart.UpdateLine(p.ID, cartapp.LineUpdate{Quantity: qty(7)})
		lines := f.cart.Lines()
		require.EqualValues(t, 7, lines[0].Quantity)
		require.Equal(t, f.main.ID, lines[0].BranchID)
	})

	t.Run("moves branch, leaves quantity", func(t *testing.T) {
		f := newFixture(t)
		second, _ := f.catalog.AddBranch("Second")
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 10})
		require.NoError(t, f.cart.AddToCart(p.ID))

		f.cart.UpdateLine(p.ID, cartapp.LineUpdate{BranchID: branch(second.ID)})
		lines := f.cart.Lines()
		require.Equal(t, second.ID, lines[0].BranchID)
		require.EqualValues(t, 1, lines[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 10})
		require.NoError(t, f.cart.AddToCart(p.ID))

		f.cart.UpdateLine(p.ID, cartapp.LineUpdate{Quantity: qty(0)})
		require.Empty(t, f.cart.Lines())
	})

	t.Run("negative clamps to zero and removes", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 10})
		require.NoError(t, f.cart.AddToCart(p.ID))

		f.cart.UpdateLine(p.ID, cartapp.LineUpdate{Quantity: qty(-3)})
		require.Empty(t, f.cart.Lines())
	})

	t.Run("missing line is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.cart.UpdateLine("ghost", cartapp.LineUpdate{Quantity: qty(5)})
		require.Empty(t, f.cart.Lines())
	})
}

func TestValidateForCommit(t *testing.T) {
	t.Run("dangling branch reads as zero availability", func(t *testing.T) {
		f := newFixture(t)
		doomed, _ := f.catalog.AddBranch("Doomed")
		p := f.addProduct(t, "Pen", "P1", map[string]int64{doomed.ID: 5})
		require.NoError(t, f.cart.AddToCart(p.ID))
		require.Equal(t, doomed.ID, f.cart.Lines()[0].BranchID)

		require.NoError(t, f.catalog.DeleteBranch(doomed.ID))

		vs := f.cart.ValidateForCommit()
		require.Len(t, vs, 1)
		require.EqualValues(t, 0, vs[0].Available)
	})

	t.Run("deleted product reads as zero availability", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 5})
		require.NoError(t, f.cart.AddToCart(p.ID))
		require.NoError(t, f.catalog.DeleteProduct(p.ID))

		vs := f.cart.ValidateForCommit()
		require.Len(t, vs, 1)
	})

	t.Run("validation mutates nothing", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 1})
		require.NoError(t, f.cart.AddToCart(p.ID))
		f.cart.UpdateLine(p.ID, cartapp.LineUpdate{Quantity: func(n int64) *int64 { return &n }(5)})

		_ = f.cart.ValidateForCommit()

		got, _ := f.catalog.Product(p.ID)
		require.EqualValues(t, 1, got.QuantityAt(f.main.ID))
		require.EqualValues(t, 5, f.cart.Lines()[0].Quantity)
	})
}

func TestCommit(t *testing.T) {
	qty := func(n int64) *int64 { return &n }

	t.Run("decrements every line and clears the cart", func(t *testing.T) {
		f := newFixture(t)
		second, _ := f.catalog.AddBranch("Second")
		pen := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 10})
		pad := f.addProduct(t, "Pad", "P2", map[string]int64{f.main.ID: 4, second.ID: 6})

		require.NoError(t, f.cart.AddToCart(pen.ID))
		require.NoError(t, f.cart.AddToCart(pen.ID))
		require.NoError(t, f.cart.AddToCart(pad.ID))
		f.cart.UpdateLine(pad.ID, cartapp.LineUpdate{Quantity: qty(3)})

		vs, err := f.cart.Commit()
		require.NoError(t, err)
		require.Empty(t, vs)
		require.Empty(t, f.cart.Lines())

		gotPen, _ := f.catalog.Product(pen.ID)
		require.EqualValues(t, 8, gotPen.QuantityAt(f.main.ID))
		gotPad, _ := f.catalog.Product(pad.ID)
		require.EqualValues(t, 1, gotPad.QuantityAt(f.main.ID))
		require.EqualValues(t, 6, gotPad.QuantityAt(second.ID), "untouched entries stay put")
	})

	t.Run("one short line aborts the whole sale", func(t *testing.T) {
		f := newFixture(t)
		pen := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 10})
		pad := f.addProduct(t, "Pad", "P2", map[string]int64{f.main.ID: 1})

		require.NoError(t, f.cart.AddToCart(pen.ID))
		require.NoError(t, f.cart.AddToCart(pad.ID))
		f.cart.UpdateLine(pad.ID, cartapp.LineUpdate{Quantity: qty(5)})

		before := f.cart.Lines()
		vs, err := f.cart.Commit()
		require.ErrorIs(t, err, cartapp.ErrStockInsufficient)
		require.Len(t, vs, 1)
		require.Equal(t, pad.ID, vs[0].ProductID)
		require.EqualValues(t, 5, vs[0].Requested)
		require.EqualValues(t, 1, vs[0].Available)

		// Stock and cart must be byte-for-byte what they were.
		gotPen, _ := f.catalog.Product(pen.ID)
		require.EqualValues(t, 10, gotPen.QuantityAt(f.main.ID))
		gotPad, _ := f.catalog.Product(pad.ID)
		require.EqualValues(t, 1, gotPad.QuantityAt(f.main.ID))
		require.Equal(t, before, f.cart.Lines())
	})

	t.Run("empty cart cannot be tendered", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.Commit()
		require.ErrorIs(t, err, cartapp.ErrEmptyCart)
	})

	t.Run("commit validates against current state, not add-time state", func(t *testing.T) {
		f := newFixture(t)
		p := f.addProduct(t, "Pen", "P1", map[string]int64{f.main.ID: 2})
		require.NoError(t, f.cart.AddToCart(p.ID))
		require.NoError(t, f.cart.AddToCart(p.ID))

		// Admin edit lands between scan and tender.
		_, err := f.catalog.UpsertProduct(catalogapp.ProductInput{
			Name:       "Pen",
			SKU:        "P1",
			Quantities: map[string]int64{f.main.ID: 1},
		}, p.ID)
		require.NoError(t, err)

		vs, err := f.cart.Commit()
		require.ErrorIs(t, err, cartapp.ErrStockInsufficient)
		require.Len(t, vs, 1)
	})
}
