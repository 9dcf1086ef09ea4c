package ledger

import (
	"math"
	"time"

	"github.com/straye-as/progress-api/internal/domain"
)

// Commit folds every staged delta of the sheet into the cumulative totals,
// capped at each sub-item's quantity, and rolls connected sub-items up into
// their line items. Committed deltas are marked so a second Commit is a no-op.
// It returns the number of deltas folded in.
func Commit(sheet []domain.LineItem, at time.Time) int {
	committed := 0
	for i := range sheet {
		item := &sheet[i]
		for j := range item.SubItems {
			sub := &item.SubItems[j]
			rep := sub.YesterdayProgressReport
			if !rep.IsStaged() {
				continue
			}
			sub.TotalSupplied = math.Min(sub.TotalQuantity, sub.TotalSupplied+rep.YesterdaySupplied)
			sub.TotalInstalled = math.Min(sub.TotalQuantity, sub.TotalInstalled+rep.YesterdayInstalled)
			committedAt := at
			rep.CommittedAt = &committedAt
			committed++
		}
		RecomputeLineItem(item)
	}
	return committed
}

// StagedDeltas counts sub-items carrying a delta that has not been committed
func StagedDeltas(sheet []domain.LineItem) int {
	n := 0
	for i := range sheet {
		for j := range sheet[i].SubItems {
			if sheet[i].SubItems[j].YesterdayProgressReport.IsStaged() {
				n++
			}
		}
	}
	return n
}

// HasDailyData reports whether any sub-item carries a non-zero daily delta
func HasDailyData(sheet []domain.LineItem) bool {
	for i := range sheet {
		for _, s := range sheet[i].SubItems {
			r := s.YesterdayProgressReport
			if r != nil && (r.YesterdaySupplied > 0 || r.YesterdayInstalled > 0) {
				return true
			}
		}
	}
	return false
}

// OverallProgress averages (percentSupplied + percentInstalled) / 2 over the
// line items, clamped to 100. An empty sheet has no progress.
func OverallProgress(sheet []domain.LineItem) int {
	if len(sheet) == 0 {
		return 0
	}
	var sum float64
	for _, item := range sheet {
		sum += float64(ClampPercent(item.PercentSupplied)+ClampPercent(item.PercentInstalled)) / 2
	}
	return ClampPercent(int(math.Round(sum / float64(len(sheet)))))
}

// AverageInstalled averages percentInstalled over the line items
func AverageInstalled(sheet []domain.LineItem) float64 {
	if len(sheet) == 0 {
		return 0
	}
	var sum float64
	for _, item := range sheet {
		sum += float64(ClampPercent(item.PercentInstalled))
	}
	return sum / float64(len(sheet))
}
