package domain

import "time"

// Clone returns a deep copy of the version without its identity fields,
// ready to be edited and appended as the next version.
func (v *ProjectVersion) Clone() *ProjectVersion {
	next := *v
	next.ID = 0
	next.VersionNumber = 0
	next.CreatedAt = time.Time{}
	next.ClientEmails = append([]string(nil), v.ClientEmails...)
	next.Comments = append([]Comment(nil), v.Comments...)
	next.Documents = append([]ProjectDocument(nil), v.Documents...)
	next.Sheet1 = CloneSheet(v.Sheet1)
	next.EstimatedStartDate = cloneTime(v.EstimatedStartDate)
	next.EstimatedEndDate = cloneTime(v.EstimatedEndDate)
	next.YesterdayReportCreatedAt = cloneTime(v.YesterdayReportCreatedAt)
	return &next
}

// CloneSheet deep-copies a Sheet1 ledger
func CloneSheet(sheet []LineItem) []LineItem {
	if sheet == nil {
		return nil
	}
	out := make([]LineItem, len(sheet))
	for i, item := range sheet {
		out[i] = item
		out[i].SupplyTargetDate = cloneTime(item.SupplyTargetDate)
		out[i].InstallationTargetDate = cloneTime(item.InstallationTargetDate)

		if item.SubItems != nil {
			out[i].SubItems = make([]SubItem, len(item.SubItems))
		}
		for j, sub := range item.SubItems {
			out[i].SubItems[j] = sub
			if sub.YesterdayProgressReport != nil {
				r := *sub.YesterdayProgressReport
				r.CommittedAt = cloneTime(r.CommittedAt)
				out[i].SubItems[j].YesterdayProgressReport = &r
			}
		}

		if item.Blockages != nil {
			out[i].Blockages = make([]Blockage, len(item.Blockages))
		}
		for j, b := range item.Blockages {
			out[i].Blockages[j] = b
			out[i].Blockages[j].BlockageEndTime = cloneTime(b.BlockageEndTime)
			out[i].Blockages[j].Photos = append([]Photo(nil), b.Photos...)
		}

		if item.ProgressReports != nil {
			out[i].ProgressReports = make([]PhotoReport, len(item.ProgressReports))
		}
		for j, r := range item.ProgressReports {
			out[i].ProgressReports[j] = r
			out[i].ProgressReports[j].Photos = append([]Photo(nil), r.Photos...)
		}
	}
	return out
}

// StorageKeys returns every object key referenced by the version
func (v *ProjectVersion) StorageKeys() []string {
	var keys []string
	for _, d := range v.Documents {
		keys = append(keys, d.StorageKey)
	}
	for _, item := range v.Sheet1 {
		for _, r := range item.ProgressReports {
			for _, p := range r.Photos {
				keys = append(keys, p.StorageKey)
			}
		}
		for _, b := range item.Blockages {
			for _, p := range b.Photos {
				keys = append(keys, p.StorageKey)
			}
		}
	}
	return keys
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
