package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/straye-as/progress-api/internal/domain"
)

// SubItemDelta is one day's supplied/installed increment for a sub-item
type SubItemDelta struct {
	SubItemID string
	Supplied  float64
	Installed float64
}

// PhotoReportEntry is a free-form progress photo submission
type PhotoReportEntry struct {
	Description string
	Photos      []domain.Photo
}

// BlockageEntry is a newly reported impediment
type BlockageEntry struct {
	Type          domain.BlockageType
	Category      string
	Severity      domain.BlockageSeverity
	Description   string
	WeatherReport string
	OpenDate      time.Time
	Photos        []domain.Photo
}

// Entry is everything a manager reports against one line item
type Entry struct {
	LineItemID   string
	Deltas       []SubItemDelta
	PhotoReports []PhotoReportEntry
	Blockages    []BlockageEntry
}

// Recorder stages a manager's daily report against a private copy of a
// sheet. It walks line items in order; cumulative totals are left untouched
// until Commit folds the staged deltas in. A Recorder belongs to a single
// request and is not safe for concurrent use.
type Recorder struct {
	sheet  []domain.LineItem
	actor  uuid.UUID
	now    time.Time
	cursor int
	staged int
	photos []domain.Photo
}

// NewRecorder copies the sheet and drops any staged deltas that were never
// committed, so a resubmission replaces the previous report.
func NewRecorder(sheet []domain.LineItem, actor uuid.UUID, now time.Time) *Recorder {
	cp := domain.CloneSheet(sheet)
	for i := range cp {
		for j := range cp[i].SubItems {
			if cp[i].SubItems[j].YesterdayProgressReport.IsStaged() {
				cp[i].SubItems[j].YesterdayProgressReport = nil
			}
		}
	}
	return &Recorder{sheet: cp, actor: actor, now: now}
}

// Current returns the line item the manager is positioned on
func (r *Recorder) Current() (*domain.LineItem, bool) {
	if r.cursor >= len(r.sheet) {
		return nil, false
	}
	return &r.sheet[r.cursor], true
}

// Done reports whether every line item has been walked
func (r *Recorder) Done() bool {
	return r.cursor >= len(r.sheet)
}

// Sheet returns the staged sheet
func (r *Recorder) Sheet() []domain.LineItem {
	return r.sheet
}

// StagedCount returns the number of sub-item deltas staged so far
func (r *Recorder) StagedCount() int {
	return r.staged
}

// Photos returns every photo referenced by accepted entries
func (r *Recorder) Photos() []domain.Photo {
	return r.photos
}

// Accept validates an entry and stages it. Entries must arrive in sheet
// order; line items without an entry are skipped. Nothing is staged when
// validation fails.
func (r *Recorder) Accept(entry Entry) error {
	idx, err := FindLineItem(r.sheet, entry.LineItemID)
	if err != nil {
		return &ValidationError{Field: "lineItemId", Err: err}
	}
	if idx < r.cursor {
		return &ValidationError{Field: fmt.Sprintf("sheet1[%s]", entry.LineItemID), Err: ErrOutOfSequence}
	}
	item := &r.sheet[idx]

	if err := r.validate(item, entry); err != nil {
		return err
	}

	for _, d := range entry.Deltas {
		j, _ := FindSubItem(item, d.SubItemID)
		item.SubItems[j].YesterdayProgressReport = &domain.YesterdayProgressReport{
			YesterdaySupplied:  d.Supplied,
			YesterdayInstalled: d.Installed,
			RecordedAt:         r.now,
		}
		r.staged++
	}

	for _, pr := range entry.PhotoReports {
		item.ProgressReports = append(item.ProgressReports, domain.PhotoReport{
			ID:          uuid.NewString(),
			Description: strings.TrimSpace(pr.Description),
			Photos:      append([]domain.Photo(nil), pr.Photos...),
			CreatedByID: r.actor,
			CreatedAt:   r.now,
		})
		r.photos = append(r.photos, pr.Photos...)
	}

	for _, b := range entry.Blockages {
		item.Blockages = append(item.Blockages, domain.Blockage{
			ID:            uuid.NewString(),
			Type:          b.Type,
			Category:      strings.TrimSpace(b.Category),
			Severity:      b.Severity,
			Description:   strings.TrimSpace(b.Description),
			WeatherReport: strings.TrimSpace(b.WeatherReport),
			OpenDate:      b.OpenDate,
			Status:        domain.BlockageStatusOpen,
			Photos:        append([]domain.Photo(nil), b.Photos...),
			CreatedByID:   r.actor,
			CreatedAt:     r.now,
		})
		r.photos = append(r.photos, b.Photos...)
	}

	r.cursor = idx + 1
	return nil
}

// Record accepts a batch of entries in order, stopping at the first invalid one
func (r *Recorder) Record(entries []Entry) error {
	for _, e := range entries {
		if err := r.Accept(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) validate(item *domain.LineItem, entry Entry) error {
	prefix := fmt.Sprintf("sheet1[%s]", item.ID)

	seen := make(map[string]bool, len(entry.Deltas))
	for _, d := range entry.Deltas {
		j, err := FindSubItem(item, d.SubItemID)
		if err != nil {
			return &ValidationError{Field: prefix + ".sheet2", Err: err}
		}
		field := fmt.Sprintf("%s.sheet2[%s]", prefix, d.SubItemID)
		if seen[d.SubItemID] {
			return &ValidationError{Field: field, Err: ErrInvalidValue}
		}
		seen[d.SubItemID] = true

		sub := item.SubItems[j]
		if d.Supplied < 0 {
			return invalid(field+".yesterdaySupplied", ErrNegativeQuantity, d.Supplied, 0)
		}
		if d.Installed < 0 {
			return invalid(field+".yesterdayInstalled", ErrNegativeQuantity, d.Installed, 0)
		}
		if limit := sub.TotalQuantity - sub.TotalSupplied; d.Supplied > limit+epsilon {
			return invalid(field+".yesterdaySupplied", ErrDeltaExceedsRemaining, d.Supplied, limit)
		}
		if limit := sub.TotalQuantity - sub.TotalInstalled; d.Installed > limit+epsilon {
			return invalid(field+".yesterdayInstalled", ErrDeltaExceedsRemaining, d.Installed, limit)
		}
	}

	// Committed deltas must keep the connected sum within the line item's quantity
	if len(entry.Deltas) > 0 && HasConnected(item) {
		projected := *item
		projected.SubItems = append([]domain.SubItem(nil), item.SubItems...)
		for _, d := range entry.Deltas {
			j, _ := FindSubItem(&projected, d.SubItemID)
			projected.SubItems[j].TotalSupplied += d.Supplied
			projected.SubItems[j].TotalInstalled += d.Installed
		}
		if err := ValidateRollup(prefix, &projected); err != nil {
			return err
		}
	}

	for i, pr := range entry.PhotoReports {
		field := fmt.Sprintf("%s.progressReports[%d]", prefix, i)
		if strings.TrimSpace(pr.Description) == "" {
			return &ValidationError{Field: field + ".description", Err: ErrMissingField}
		}
		if len(pr.Photos) == 0 {
			return &ValidationError{Field: field + ".photos", Err: ErrMissingField}
		}
		if err := validatePhotos(field, pr.Photos); err != nil {
			return err
		}
	}

	for i, b := range entry.Blockages {
		field := fmt.Sprintf("%s.blockages[%d]", prefix, i)
		if err := validateBlockage(field, b); err != nil {
			return err
		}
	}
	return nil
}

func validateBlockage(field string, b BlockageEntry) error {
	switch {
	case !b.Type.IsValid():
		return &ValidationError{Field: field + ".type", Err: ErrInvalidValue}
	case strings.TrimSpace(b.Category) == "":
		return &ValidationError{Field: field + ".category", Err: ErrMissingField}
	case !b.Severity.IsValid():
		return &ValidationError{Field: field + ".severity", Err: ErrInvalidValue}
	case strings.TrimSpace(b.Description) == "":
		return &ValidationError{Field: field + ".description", Err: ErrMissingField}
	case strings.TrimSpace(b.WeatherReport) == "":
		return &ValidationError{Field: field + ".weatherReport", Err: ErrMissingField}
	case b.OpenDate.IsZero():
		return &ValidationError{Field: field + ".openDate", Err: ErrMissingField}
	}
	return validatePhotos(field, b.Photos)
}

func validatePhotos(field string, photos []domain.Photo) error {
	for i, p := range photos {
		if strings.TrimSpace(p.StorageKey) == "" {
			return &ValidationError{Field: fmt.Sprintf("%s.photos[%d].storageKey", field, i), Err: ErrMissingField}
		}
	}
	return nil
}
