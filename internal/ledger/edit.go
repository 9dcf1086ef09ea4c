package ledger

import (
	"fmt"

	"github.com/straye-as/progress-api/internal/domain"
)

// SubItemChange carries raw-field edits for a sub-item. Nil fields are left unchanged.
type SubItemChange struct {
	TotalQuantity         *float64
	TotalSupplied         *float64
	TotalInstalled        *float64
	ConnectWithSheet1Item *bool
}

// LineItemChange carries raw-field edits for a line item. Nil fields are left unchanged.
type LineItemChange struct {
	TotalQuantity  *float64
	TotalSupplied  *float64
	TotalInstalled *float64
}

// EditSubItem applies raw-field edits to a sub-item. Values above the
// sub-item's quantity are rejected, not clamped. When the sub-item is
// connected before or after the edit the parent is rolled up again, and an
// edit that pushes the connected sum past the parent's quantity is rejected.
// The item is left untouched on error.
func EditSubItem(item *domain.LineItem, subItemID string, ch SubItemChange) error {
	idx, err := FindSubItem(item, subItemID)
	if err != nil {
		return err
	}
	sub := item.SubItems[idx]
	wasConnected := sub.ConnectWithSheet1Item

	if ch.TotalQuantity != nil {
		sub.TotalQuantity = *ch.TotalQuantity
	}
	if ch.TotalSupplied != nil {
		sub.TotalSupplied = *ch.TotalSupplied
	}
	if ch.TotalInstalled != nil {
		sub.TotalInstalled = *ch.TotalInstalled
	}
	if ch.ConnectWithSheet1Item != nil {
		sub.ConnectWithSheet1Item = *ch.ConnectWithSheet1Item
	}

	field := fmt.Sprintf("sheet2[%s]", subItemID)
	if err := validateTotals(field, sub.TotalQuantity, sub.TotalSupplied, sub.TotalInstalled); err != nil {
		return err
	}
	RecomputeSubItem(&sub)

	next := *item
	next.SubItems = append([]domain.SubItem(nil), item.SubItems...)
	next.SubItems[idx] = sub

	if wasConnected || sub.ConnectWithSheet1Item {
		if err := ValidateRollup(fmt.Sprintf("sheet1[%s]", item.ID), &next); err != nil {
			return err
		}
		RecomputeLineItem(&next)
	}
	*item = next
	return nil
}

// EditLineItem applies raw-field edits to a line item. Cumulative totals of a
// line item with connected sub-items are derived and cannot be edited, and
// its quantity cannot drop below the connected sub-items' sum.
func EditLineItem(item *domain.LineItem, ch LineItemChange) error {
	field := fmt.Sprintf("sheet1[%s]", item.ID)
	connected := HasConnected(item)
	if connected && (ch.TotalSupplied != nil || ch.TotalInstalled != nil) {
		return &ValidationError{Field: field + ".totalSupplied", Err: ErrParentTotalsDerived}
	}

	next := *item
	if ch.TotalQuantity != nil {
		next.TotalQuantity = *ch.TotalQuantity
	}
	if ch.TotalSupplied != nil {
		next.TotalSupplied = *ch.TotalSupplied
	}
	if ch.TotalInstalled != nil {
		next.TotalInstalled = *ch.TotalInstalled
	}

	if !connected {
		if err := validateTotals(field, next.TotalQuantity, next.TotalSupplied, next.TotalInstalled); err != nil {
			return err
		}
	} else {
		if next.TotalQuantity < 0 {
			return invalid(field+".totalQuantity", ErrNegativeQuantity, next.TotalQuantity, 0)
		}
		if err := ValidateRollup(field, &next); err != nil {
			return err
		}
	}

	*item = next
	RecomputeLineItem(item)
	return nil
}
