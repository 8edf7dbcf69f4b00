package app

import (
	"sort"
	"strings"

	"github.com/marcos21288848/stockpos/internal/catalog/domain"
)

type SortKey string

const (
	SortByName          SortKey = "name"
	SortBySKU           SortKey = "sku"
	SortByTotalQuantity SortKey = "quantity"
)

// ViewQuery describes what the presentation layer wants to see. Filter is a
// case-insensitive substring match over name or SKU; an empty Sort keeps
// insertion order.
type ViewQuery struct {
	Filter string
	Sort   SortKey
	Desc   bool
}

// View is a recomputed-on-demand, read-only projection of the catalog.
type View struct {
	Products      []domain.Product
	TotalQuantity int64
}

// View filters and sorts the products. Sorting is stable: products that
// compare equal keep their original relative order.
func (s *Service) View(q ViewQuery) View {
	filter := strings.ToLower(strings.TrimSpace(q.Filter))

	var out []domain.Product
	for _, p := range s.products {
		if filter != "" &&
			!strings.Contains(strings.ToLower(p.Name), filter) &&
			!strings.Contains(strings.ToLower(p.SKU), filter) {
			continue
		}
		out = append(out, p.Clone())
	}

	if less := lessFunc(q.Sort); less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			if q.Desc {
				i, j = j, i
			}
			return less(out[i], out[j])
		})
	}

	var total int64
	for _, p := range out {
		total += p.TotalQuantity()
	}
	return View{Products: out, TotalQuantity: total}
}

func lessFunc(key SortKey) func(a, b domain.Product) bool {
	switch key {
	case SortByName:
		return func(a, b domain.Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortBySKU:
		return func(a, b domain.Product) bool {
			return strings.ToLower(a.SKU) < strings.ToLower(b.SKU)
		}
	case SortByTotalQuantity:
		return func(a, b domain.Product) bool {
			return a.TotalQuantity() < b.TotalQuantity()
		}
	default:
		return nil
	}
}
