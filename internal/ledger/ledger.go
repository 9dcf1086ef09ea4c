// Package ledger holds the quantity ledger of a project version: line items,
// their sub-items, cumulative supplied/installed totals and the derived
// remaining balances and percentages. Everything here is pure; callers own
// persistence and authorization.
package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/straye-as/progress-api/internal/domain"
)

// epsilon absorbs float noise when comparing quantities
const epsilon = 1e-9

var (
	ErrQuantityExceedsTotal  = errors.New("quantity exceeds total quantity")
	ErrDeltaExceedsRemaining = errors.New("daily delta exceeds remaining balance")
	ErrNegativeQuantity      = errors.New("quantity must not be negative")
	ErrParentTotalsDerived   = errors.New("line item totals are derived from connected sub-items")
	ErrLineItemNotFound      = errors.New("line item not found")
	ErrSubItemNotFound       = errors.New("sub-item not found")
	ErrMissingField          = errors.New("required field missing")
	ErrInvalidValue          = errors.New("invalid value")
	ErrOutOfSequence         = errors.New("line item entry out of sequence")
)

// ValidationError names the offending field and the limit it violated
type ValidationError struct {
	Field string
	Limit float64
	Value float64
	Err   error
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrDeltaExceedsRemaining), errors.Is(e.Err, ErrQuantityExceedsTotal):
		return fmt.Sprintf("%s: %v (value %g, limit %g)", e.Field, e.Err, e.Value, e.Limit)
	default:
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error, value, limit float64) *ValidationError {
	return &ValidationError{Field: field, Err: err, Value: value, Limit: limit}
}

// ComputeRemaining returns max(0, total - cumulative)
func ComputeRemaining(total, cumulative float64) float64 {
	return math.Max(0, total-cumulative)
}

// ComputePercent returns round(cumulative/total*100), or 0 when total is 0
func ComputePercent(cumulative, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(cumulative / total * 100))
}

// ClampPercent bounds a percentage to [0, 100]
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// clampQuantity bounds a cumulative value to [0, total]
func clampQuantity(v, total float64) float64 {
	if v < 0 {
		return 0
	}
	if v > total {
		return total
	}
	return v
}

// RecomputeSubItem refreshes the derived fields of a sub-item from its totals
func RecomputeSubItem(s *domain.SubItem) {
	s.YetToSupply = ComputeRemaining(s.TotalQuantity, s.TotalSupplied)
	s.YetToInstall = ComputeRemaining(s.TotalQuantity, s.TotalInstalled)
	s.PercentSupplied = ClampPercent(ComputePercent(s.TotalSupplied, s.TotalQuantity))
	s.PercentInstalled = ClampPercent(ComputePercent(s.TotalInstalled, s.TotalQuantity))
}

func recomputeLineDerived(item *domain.LineItem) {
	item.YetToSupply = ComputeRemaining(item.TotalQuantity, item.TotalSupplied)
	item.YetToInstall = ComputeRemaining(item.TotalQuantity, item.TotalInstalled)
	item.PercentSupplied = ClampPercent(ComputePercent(item.TotalSupplied, item.TotalQuantity))
	item.PercentInstalled = ClampPercent(ComputePercent(item.TotalInstalled, item.TotalQuantity))
}

// ConnectedSubItems returns the sub-items whose totals feed the line item
func ConnectedSubItems(item *domain.LineItem) []domain.SubItem {
	var out []domain.SubItem
	for _, s := range item.SubItems {
		if s.ConnectWithSheet1Item {
			out = append(out, s)
		}
	}
	return out
}

// HasConnected reports whether any sub-item rolls up into the line item
func HasConnected(item *domain.LineItem) bool {
	for _, s := range item.SubItems {
		if s.ConnectWithSheet1Item {
			return true
		}
	}
	return false
}

// ApplyRollup sets the parent's cumulative totals to the sum of the connected
// children's totals, each child clamped to its own quantity first, and then
// refreshes the parent's derived fields. The parent totals are never clamped;
// a sum above the parent's quantity is rejected by Validate and ValidateRollup.
// Reapplying with unchanged children yields the same state.
func ApplyRollup(parent *domain.LineItem, connected []domain.SubItem) {
	parent.TotalSupplied, parent.TotalInstalled = connectedTotals(connected)
	recomputeLineDerived(parent)
}

func connectedTotals(connected []domain.SubItem) (supplied, installed float64) {
	for _, c := range connected {
		supplied += clampQuantity(c.TotalSupplied, c.TotalQuantity)
		installed += clampQuantity(c.TotalInstalled, c.TotalQuantity)
	}
	return supplied, installed
}

// ValidateRollup rejects a line item whose connected sub-items add up to
// more than its own quantity. Items without connected sub-items pass.
func ValidateRollup(field string, item *domain.LineItem) error {
	connected := ConnectedSubItems(item)
	if len(connected) == 0 {
		return nil
	}
	supplied, installed := connectedTotals(connected)
	if supplied > item.TotalQuantity+epsilon {
		return invalid(field+".totalSupplied", ErrQuantityExceedsTotal, supplied, item.TotalQuantity)
	}
	if installed > item.TotalQuantity+epsilon {
		return invalid(field+".totalInstalled", ErrQuantityExceedsTotal, installed, item.TotalQuantity)
	}
	return nil
}

// RecomputeLineItem refreshes a line item and its sub-items. Connected
// sub-items overwrite the parent's totals through ApplyRollup.
func RecomputeLineItem(item *domain.LineItem) {
	for i := range item.SubItems {
		RecomputeSubItem(&item.SubItems[i])
	}
	if HasConnected(item) {
		ApplyRollup(item, ConnectedSubItems(item))
		return
	}
	recomputeLineDerived(item)
}

// Recompute refreshes every derived field of a sheet
func Recompute(sheet []domain.LineItem) {
	for i := range sheet {
		RecomputeLineItem(&sheet[i])
	}
}

// Validate checks the quantity invariants of every line item and sub-item,
// including the sum of connected sub-items against their line item
func Validate(sheet []domain.LineItem) error {
	for i, item := range sheet {
		prefix := fmt.Sprintf("sheet1[%d]", i)
		if err := validateTotals(prefix, item.TotalQuantity, item.TotalSupplied, item.TotalInstalled); err != nil {
			return err
		}
		for j, s := range item.SubItems {
			sp := fmt.Sprintf("%s.sheet2[%d]", prefix, j)
			if err := validateTotals(sp, s.TotalQuantity, s.TotalSupplied, s.TotalInstalled); err != nil {
				return err
			}
		}
		if err := ValidateRollup(prefix, &sheet[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateTotals(prefix string, quantity, supplied, installed float64) error {
	switch {
	case quantity < 0:
		return invalid(prefix+".totalQuantity", ErrNegativeQuantity, quantity, 0)
	case supplied < 0:
		return invalid(prefix+".totalSupplied", ErrNegativeQuantity, supplied, 0)
	case installed < 0:
		return invalid(prefix+".totalInstalled", ErrNegativeQuantity, installed, 0)
	case supplied > quantity+epsilon:
		return invalid(prefix+".totalSupplied", ErrQuantityExceedsTotal, supplied, quantity)
	case installed > quantity+epsilon:
		return invalid(prefix+".totalInstalled", ErrQuantityExceedsTotal, installed, quantity)
	}
	return nil
}

// FindLineItem returns the index of the line item with the given id
func FindLineItem(sheet []domain.LineItem, id string) (int, error) {
	for i := range sheet {
		if sheet[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrLineItemNotFound
}

// FindSubItem returns the index of the sub-item with the given id
func FindSubItem(item *domain.LineItem, id string) (int, error) {
	for i := range item.SubItems {
		if item.SubItems[i].ID == id {
			return i, nil
		}
	}
	return -1, ErrSubItemNotFound
}
