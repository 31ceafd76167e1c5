// Package cart holds the pure cart rules: the incentive product composition
// and the cached snapshot shape.
package cart

import (
	"github.com/goliatone/go-storefront/model"
	"github.com/google/uuid"
)

// ApplyIncentive returns products with the incentive added or removed so that
// it is present exactly when more than one other product is in the cart.
// Duplicate ids collapse to their first occurrence. A nil incentive leaves the
// deduplicated list unchanged. Applying it twice is the same as applying it once.
func ApplyIncentive(products []model.Product, incentive *model.Product) []model.Product {
	out := Dedupe(products)
	if incentive == nil {
		return out
	}

	present := -1
	for i, p := range out {
		if p.ID == incentive.ID {
			present = i
			break
		}
	}

	n := len(out)
	if present >= 0 {
		n--
	}

	switch {
	case present >= 0 && n <= 1:
		return append(out[:present:present], out[present+1:]...)
	case present < 0 && n > 1:
		return append(out, *incentive)
	default:
		return out
	}
}

// Dedupe drops repeated product ids, keeping first occurrence order.
func Dedupe(products []model.Product) []model.Product {
	seen := make(map[uuid.UUID]struct{}, len(products))
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
