package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
)

func ptr[T any](v T) *T { return &v }

func TestComputeRemaining(t *testing.T) {
	assert.Equal(t, 10.0, ledger.ComputeRemaining(100, 90))
	assert.Equal(t, 0.0, ledger.ComputeRemaining(100, 100))
	assert.Equal(t, 0.0, ledger.ComputeRemaining(100, 120))
}

func TestComputePercent(t *testing.T) {
	tests := []struct {
		name       string
		cumulative float64
		total      float64
		expected   int
	}{
		{name: "zero total", cumulative: 10, total: 0, expected: 0},
		{name: "half", cumulative: 250, total: 500, expected: 50},
		{name: "rounds up", cumulative: 2, total: 3, expected: 67},
		{name: "rounds down", cumulative: 1, total: 3, expected: 33},
		{name: "complete", cumulative: 40, total: 40, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ledger.ComputePercent(tt.cumulative, tt.total))
		})
	}
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0, ledger.ClampPercent(-5))
	assert.Equal(t, 42, ledger.ClampPercent(42))
	assert.Equal(t, 100, ledger.ClampPercent(130))
}

func TestApplyRollup_OnlyConnectedChildren(t *testing.T) {
	parent := domain.LineItem{
		ID:            "li-1",
		TotalQuantity: 200,
		SubItems: []domain.SubItem{
			{ID: "a", TotalQuantity: 100, TotalSupplied: 40, ConnectWithSheet1Item: true},
			{ID: "b", TotalQuantity: 50, TotalSupplied: 10, ConnectWithSheet1Item: true},
			{ID: "c", TotalQuantity: 20, TotalSupplied: 5, ConnectWithSheet1Item: false},
		},
	}

	ledger.ApplyRollup(&parent, ledger.ConnectedSubItems(&parent))

	assert.Equal(t, 50.0, parent.TotalSupplied)
	assert.Equal(t, 150.0, parent.YetToSupply)
	assert.Equal(t, 25, parent.PercentSupplied)
}

func TestApplyRollup_ClampsChildrenAndIsIdempotent(t *testing.T) {
	parent := domain.LineItem{
		ID:            "li-1",
		TotalQuantity: 100,
		SubItems: []domain.SubItem{
			{ID: "a", TotalQuantity: 30, TotalSupplied: 45, TotalInstalled: 10, ConnectWithSheet1Item: true},
			{ID: "b", TotalQuantity: 20, TotalSupplied: 20, TotalInstalled: 5, ConnectWithSheet1Item: true},
		},
	}
	connected := ledger.ConnectedSubItems(&parent)

	ledger.ApplyRollup(&parent, connected)
	first := parent

	ledger.ApplyRollup(&parent, connected)

	assert.Equal(t, 50.0, parent.TotalSupplied)
	assert.Equal(t, 15.0, parent.TotalInstalled)
	assert.Equal(t, first, parent)
}

func TestApplyRollup_ParentIsExactSum(t *testing.T) {
	parent := domain.LineItem{
		ID:            "li-1",
		TotalQuantity: 40,
		SubItems: []domain.SubItem{
			{ID: "a", TotalQuantity: 30, TotalSupplied: 30, ConnectWithSheet1Item: true},
			{ID: "b", TotalQuantity: 30, TotalSupplied: 30, ConnectWithSheet1Item: true},
		},
	}

	ledger.ApplyRollup(&parent, ledger.ConnectedSubItems(&parent))

	assert.Equal(t, 60.0, parent.TotalSupplied)
	assert.Equal(t, 100, parent.PercentSupplied)
	assert.Equal(t, 0.0, parent.YetToSupply)

	err := ledger.ValidateRollup("sheet1[0]", &parent)
	var vErr *ledger.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ErrorIs(t, err, ledger.ErrQuantityExceedsTotal)
	assert.Equal(t, "sheet1[0].totalSupplied", vErr.Field)
	assert.Equal(t, 60.0, vErr.Value)
	assert.Equal(t, 40.0, vErr.Limit)
}

func TestRecompute_UnconnectedParentKeepsOwnTotals(t *testing.T) {
	sheet := []domain.LineItem{{
		ID:             "li-1",
		TotalQuantity:  80,
		TotalSupplied:  20,
		TotalInstalled: 10,
		SubItems: []domain.SubItem{
			{ID: "a", TotalQuantity: 10, TotalSupplied: 10},
		},
	}}

	ledger.Recompute(sheet)

	assert.Equal(t, 20.0, sheet[0].TotalSupplied)
	assert.Equal(t, 25, sheet[0].PercentSupplied)
	assert.Equal(t, 13, sheet[0].PercentInstalled)
	assert.Equal(t, 100, sheet[0].SubItems[0].PercentSupplied)
	assert.Equal(t, 0.0, sheet[0].SubItems[0].YetToSupply)
}

func TestValidate(t *testing.T) {
	t.Run("valid sheet", func(t *testing.T) {
		sheet := []domain.LineItem{{ID: "li", TotalQuantity: 10, TotalSupplied: 10}}
		assert.NoError(t, ledger.Validate(sheet))
	})

	t.Run("sub-item above total", func(t *testing.T) {
		sheet := []domain.LineItem{{
			ID:            "li",
			TotalQuantity: 10,
			SubItems:      []domain.SubItem{{ID: "s", TotalQuantity: 5, TotalInstalled: 6}},
		}}
		err := ledger.Validate(sheet)

		var vErr *ledger.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, err, ledger.ErrQuantityExceedsTotal)
		assert.Equal(t, "sheet1[0].sheet2[0].totalInstalled", vErr.Field)
		assert.Equal(t, 5.0, vErr.Limit)
	})

	t.Run("negative quantity", func(t *testing.T) {
		sheet := []domain.LineItem{{ID: "li", TotalQuantity: -1}}
		assert.ErrorIs(t, ledger.Validate(sheet), ledger.ErrNegativeQuantity)
	})

	t.Run("connected children above parent quantity", func(t *testing.T) {
		sheet := []domain.LineItem{{
			ID:            "li",
			TotalQuantity: 100,
			SubItems: []domain.SubItem{
				{ID: "a", TotalQuantity: 100, TotalSupplied: 80, ConnectWithSheet1Item: true},
				{ID: "b", TotalQuantity: 100, TotalSupplied: 80, ConnectWithSheet1Item: true},
			},
		}}
		err := ledger.Validate(sheet)

		var vErr *ledger.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, err, ledger.ErrQuantityExceedsTotal)
		assert.Equal(t, "sheet1[0].totalSupplied", vErr.Field)
		assert.Equal(t, 160.0, vErr.Value)
		assert.Equal(t, 100.0, vErr.Limit)
	})

	t.Run("unconnected children may exceed parent quantity", func(t *testing.T) {
		sheet := []domain.LineItem{{
			ID:            "li",
			TotalQuantity: 100,
			SubItems: []domain.SubItem{
				{ID: "a", TotalQuantity: 100, TotalSupplied: 80},
				{ID: "b", TotalQuantity: 100, TotalSupplied: 80},
			},
		}}
		assert.NoError(t, ledger.Validate(sheet))
	})
}

func TestEditSubItem(t *testing.T) {
	newItem := func() domain.LineItem {
		item := domain.LineItem{
			ID:            "li",
			TotalQuantity: 100,
			SubItems: []domain.SubItem{
				{ID: "a", TotalQuantity: 50, TotalSupplied: 10, ConnectWithSheet1Item: true},
				{ID: "b", TotalQuantity: 50, TotalSupplied: 20},
			},
		}
		ledger.RecomputeLineItem(&item)
		return item
	}

	t.Run("connected edit rolls up parent", func(t *testing.T) {
		item := newItem()
		require.NoError(t, ledger.EditSubItem(&item, "a", ledger.SubItemChange{TotalSupplied: ptr(30.0)}))
		assert.Equal(t, 30.0, item.TotalSupplied)
		assert.Equal(t, 60, item.SubItems[0].PercentSupplied)
	})

	t.Run("unconnected edit leaves parent", func(t *testing.T) {
		item := newItem()
		require.NoError(t, ledger.EditSubItem(&item, "b", ledger.SubItemChange{TotalSupplied: ptr(40.0)}))
		assert.Equal(t, 10.0, item.TotalSupplied)
		assert.Equal(t, 80, item.SubItems[1].PercentSupplied)
	})

	t.Run("connecting a child rolls it in", func(t *testing.T) {
		item := newItem()
		require.NoError(t, ledger.EditSubItem(&item, "b", ledger.SubItemChange{ConnectWithSheet1Item: ptr(true)}))
		assert.Equal(t, 30.0, item.TotalSupplied)
	})

	t.Run("edit above total is rejected", func(t *testing.T) {
		item := newItem()
		err := ledger.EditSubItem(&item, "a", ledger.SubItemChange{TotalSupplied: ptr(51.0)})
		assert.ErrorIs(t, err, ledger.ErrQuantityExceedsTotal)
		assert.Equal(t, 10.0, item.SubItems[0].TotalSupplied)
	})

	t.Run("connected sum above parent quantity is rejected", func(t *testing.T) {
		item := newItem()
		require.NoError(t, ledger.EditSubItem(&item, "b", ledger.SubItemChange{TotalSupplied: ptr(50.0)}))

		err := ledger.EditSubItem(&item, "a", ledger.SubItemChange{TotalQuantity: ptr(60.0), TotalSupplied: ptr(60.0)})
		require.NoError(t, err)

		err = ledger.EditSubItem(&item, "b", ledger.SubItemChange{ConnectWithSheet1Item: ptr(true)})
		var vErr *ledger.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, err, ledger.ErrQuantityExceedsTotal)
		assert.Equal(t, "sheet1[li].totalSupplied", vErr.Field)
		assert.Equal(t, 110.0, vErr.Value)
		assert.False(t, item.SubItems[1].ConnectWithSheet1Item)
		assert.Equal(t, 60.0, item.TotalSupplied)
	})

	t.Run("unknown sub-item", func(t *testing.T) {
		item := newItem()
		assert.ErrorIs(t, ledger.EditSubItem(&item, "zz", ledger.SubItemChange{}), ledger.ErrSubItemNotFound)
	})
}

func TestEditLineItem(t *testing.T) {
	t.Run("derived totals cannot be edited", func(t *testing.T) {
		item := domain.LineItem{
			ID:            "li",
			TotalQuantity: 100,
			SubItems:      []domain.SubItem{{ID: "a", TotalQuantity: 10, ConnectWithSheet1Item: true}},
		}
		err := ledger.EditLineItem(&item, ledger.LineItemChange{TotalSupplied: ptr(5.0)})
		assert.ErrorIs(t, err, ledger.ErrParentTotalsDerived)
	})

	t.Run("quantity of a connected parent can change", func(t *testing.T) {
		item := domain.LineItem{
			ID:            "li",
			TotalQuantity: 100,
			SubItems:      []domain.SubItem{{ID: "a", TotalQuantity: 10, TotalSupplied: 10, ConnectWithSheet1Item: true}},
		}
		require.NoError(t, ledger.EditLineItem(&item, ledger.LineItemChange{TotalQuantity: ptr(20.0)}))
		assert.Equal(t, 50, item.PercentSupplied)
	})

	t.Run("connected parent quantity cannot drop below children sum", func(t *testing.T) {
		item := domain.LineItem{
			ID:            "li",
			TotalQuantity: 100,
			SubItems: []domain.SubItem{
				{ID: "a", TotalQuantity: 50, TotalSupplied: 40, TotalInstalled: 10, ConnectWithSheet1Item: true},
				{ID: "b", TotalQuantity: 50, TotalSupplied: 30, TotalInstalled: 5, ConnectWithSheet1Item: true},
			},
		}
		ledger.RecomputeLineItem(&item)

		err := ledger.EditLineItem(&item, ledger.LineItemChange{TotalQuantity: ptr(60.0)})
		var vErr *ledger.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, err, ledger.ErrQuantityExceedsTotal)
		assert.Equal(t, "sheet1[li].totalSupplied", vErr.Field)
		assert.Equal(t, 70.0, vErr.Value)
		assert.Equal(t, 60.0, vErr.Limit)
		assert.Equal(t, 100.0, item.TotalQuantity)
	})

	t.Run("plain edit recomputes", func(t *testing.T) {
		item := domain.LineItem{ID: "li", TotalQuantity: 100}
		require.NoError(t, ledger.EditLineItem(&item, ledger.LineItemChange{TotalInstalled: ptr(75.0)}))
		assert.Equal(t, 75, item.PercentInstalled)
		assert.Equal(t, 25.0, item.YetToInstall)
	})

	t.Run("above total rejected", func(t *testing.T) {
		item := domain.LineItem{ID: "li", TotalQuantity: 100}
		err := ledger.EditLineItem(&item, ledger.LineItemChange{TotalSupplied: ptr(101.0)})
		assert.ErrorIs(t, err, ledger.ErrQuantityExceedsTotal)
		assert.Equal(t, 0.0, item.TotalSupplied)
	})
}

func TestOverallProgress(t *testing.T) {
	sheet := []domain.LineItem{
		{PercentSupplied: 100, PercentInstalled: 50},
		{PercentSupplied: 40, PercentInstalled: 10},
	}
	assert.Equal(t, 50, ledger.OverallProgress(sheet))
	assert.Equal(t, 0, ledger.OverallProgress(nil))
	assert.Equal(t, 100, ledger.OverallProgress([]domain.LineItem{{PercentSupplied: 140, PercentInstalled: 120}}))
}
