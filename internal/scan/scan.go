// Package scan models the barcode-scanner collaborator: a cancellable
// one-shot task that yields a decoded string or ends without one. Results
// are consumed on the single-writer path that also handles manual input;
// nothing here mutates catalog or cart state.
package scan

import (
	"context"
	"errors"
)

// Target names where a decoded code should be dispatched.
type Target string

const (
	// TargetCatalogForm fills the SKU field of the product form.
	TargetCatalogForm Target = "catalog-form"
	// TargetCatalogSearch fills the catalog search filter.
	TargetCatalogSearch Target = "catalog-search"
	// TargetPointOfSale looks the code up as a SKU and adds to the cart.
	TargetPointOfSale Target = "point-of-sale"
)

// ErrCanceled reports a scan that ended without a decode, either because
// the user dismissed it or the context was canceled.
var ErrCanceled = errors.New("scan canceled")

// Result is the outcome of one scan attempt: a decoded code or an error,
// never both.
type Result struct {
	Code string
	Err  error
}

// Source is the device side of the scanner: one blocking decode attempt
// that honors context cancellation.
type Source interface {
	Scan(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Scan(ctx context.Context) (string, error) { return f(ctx) }

// Begin starts a one-shot scan against src. Exactly one Result is sent on
// the returned channel, which is then closed. The cancel func aborts the
// wait; a canceled scan delivers ErrCanceled.
func Begin(ctx context.Context, src Source) (<-chan Result, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		code, err := src.Scan(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				err = ErrCanceled
			}
			out <- Result{Err: err}
			return
		}
		out <- Result{Code: code}
	}()
	return out, cancel
}
