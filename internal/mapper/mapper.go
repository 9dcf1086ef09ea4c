package mapper

import (
	"fmt"
	"time"

	"github.com/straye-as/progress-api/internal/domain"
	"github.com/straye-as/progress-api/internal/ledger"
)

const timeLayout = "2006-01-02T15:04:05Z"

// FormatTime renders a timestamp in the API's ISO 8601 UTC format
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

// ToProjectVersionDTO converts a version snapshot to its API form.
// urls maps storage keys to resolved download URLs; missing keys leave URL empty.
func ToProjectVersionDTO(v *domain.ProjectVersion, urls map[string]string) domain.ProjectVersionDTO {
	dto := domain.ProjectVersionDTO{
		ID:                       v.ID,
		ProjectID:                v.ProjectID,
		VersionNumber:            v.VersionNumber,
		ProjectName:              v.ProjectName,
		ProjectManagerID:         v.ProjectManagerID,
		ProjectManagerName:       v.ProjectManagerName,
		ClientName:               v.ClientName,
		ClientContactPerson:      v.ClientContactPerson,
		ClientEmails:             v.ClientEmails,
		SiteLocation:             v.SiteLocation,
		Status:                   v.Status,
		Priority:                 v.Priority,
		EstimatedStartDate:       formatTimePtr(v.EstimatedStartDate),
		EstimatedEndDate:         formatTimePtr(v.EstimatedEndDate),
		YesterdayReportStatus:    v.YesterdayReportStatus,
		YesterdayReportCreatedAt: formatTimePtr(v.YesterdayReportCreatedAt),
		OverallProgress:          ledger.OverallProgress(v.Sheet1),
		Comments:                 make([]domain.CommentDTO, 0, len(v.Comments)),
		Documents:                make([]domain.ProjectDocumentDTO, 0, len(v.Documents)),
		Sheet1:                   make([]domain.LineItemDTO, 0, len(v.Sheet1)),
		CreatedByID:              v.CreatedByID,
		CreatedAt:                FormatTime(v.CreatedAt),
	}
	if dto.ClientEmails == nil {
		dto.ClientEmails = []string{}
	}

	for _, c := range v.Comments {
		dto.Comments = append(dto.Comments, domain.CommentDTO{
			AuthorID:   c.AuthorID,
			AuthorName: c.AuthorName,
			AuthorRole: c.AuthorRole,
			Action:     c.Action,
			Text:       c.Text,
			CreatedAt:  FormatTime(c.CreatedAt),
		})
	}
	for _, d := range v.Documents {
		dto.Documents = append(dto.Documents, domain.ProjectDocumentDTO{
			ID:         d.ID,
			StorageKey: d.StorageKey,
			FileName:   d.FileName,
			FileType:   d.FileType,
			URL:        urls[d.StorageKey],
			UploadedAt: FormatTime(d.UploadedAt),
		})
	}
	for i := range v.Sheet1 {
		dto.Sheet1 = append(dto.Sheet1, ToLineItemDTO(&v.Sheet1[i], urls))
	}
	return dto
}

// ToLineItemDTO converts a line item with its sub-items, blockages and photo reports
func ToLineItemDTO(item *domain.LineItem, urls map[string]string) domain.LineItemDTO {
	dto := domain.LineItemDTO{
		ID:                     item.ID,
		ItemName:               item.ItemName,
		Unit:                   item.Unit,
		TotalQuantity:          item.TotalQuantity,
		TotalSupplied:          item.TotalSupplied,
		TotalInstalled:         item.TotalInstalled,
		YetToSupply:            item.YetToSupply,
		YetToInstall:           item.YetToInstall,
		PercentSupplied:        item.PercentSupplied,
		PercentInstalled:       item.PercentInstalled,
		SupplyTargetDate:       formatTimePtr(item.SupplyTargetDate),
		InstallationTargetDate: formatTimePtr(item.InstallationTargetDate),
		SubItems:               make([]domain.SubItemDTO, 0, len(item.SubItems)),
		Blockages:              make([]domain.BlockageDTO, 0, len(item.Blockages)),
		ProgressReports:        make([]domain.PhotoReportDTO, 0, len(item.ProgressReports)),
	}

	for _, s := range item.SubItems {
		sub := domain.SubItemDTO{
			ID:                    s.ID,
			SubItemName:           s.SubItemName,
			Unit:                  s.Unit,
			TotalQuantity:         s.TotalQuantity,
			TotalSupplied:         s.TotalSupplied,
			TotalInstalled:        s.TotalInstalled,
			YetToSupply:           s.YetToSupply,
			YetToInstall:          s.YetToInstall,
			PercentSupplied:       s.PercentSupplied,
			PercentInstalled:      s.PercentInstalled,
			ConnectWithSheet1Item: s.ConnectWithSheet1Item,
		}
		if r := s.YesterdayProgressReport; r != nil {
			sub.YesterdayProgressReport = &domain.YesterdayProgressReportDTO{
				YesterdaySupplied:  r.YesterdaySupplied,
				YesterdayInstalled: r.YesterdayInstalled,
				RecordedAt:         FormatTime(r.RecordedAt),
				Committed:          r.CommittedAt != nil,
			}
		}
		dto.SubItems = append(dto.SubItems, sub)
	}
	for i := range item.Blockages {
		dto.Blockages = append(dto.Blockages, ToBlockageDTO(item, &item.Blockages[i], urls))
	}
	for _, r := range item.ProgressReports {
		dto.ProgressReports = append(dto.ProgressReports, domain.PhotoReportDTO{
			ID:          r.ID,
			Description: r.Description,
			Photos:      toPhotoDTOs(r.Photos, urls),
			CreatedByID: r.CreatedByID,
			CreatedAt:   FormatTime(r.CreatedAt),
		})
	}
	return dto
}

// ToBlockageDTO converts a blockage and tags it with its line item
func ToBlockageDTO(item *domain.LineItem, b *domain.Blockage, urls map[string]string) domain.BlockageDTO {
	return domain.BlockageDTO{
		ID:              b.ID,
		LineItemID:      item.ID,
		LineItemName:    item.ItemName,
		Type:            b.Type,
		Category:        b.Category,
		Severity:        b.Severity,
		Description:     b.Description,
		WeatherReport:   b.WeatherReport,
		OpenDate:        FormatTime(b.OpenDate),
		Status:          b.Status,
		BlockageEndTime: formatTimePtr(b.BlockageEndTime),
		Photos:          toPhotoDTOs(b.Photos, urls),
		CreatedByID:     b.CreatedByID,
		CreatedAt:       FormatTime(b.CreatedAt),
	}
}

func toPhotoDTOs(photos []domain.Photo, urls map[string]string) []domain.PhotoDTO {
	out := make([]domain.PhotoDTO, 0, len(photos))
	for _, p := range photos {
		out = append(out, domain.PhotoDTO{
			StorageKey: p.StorageKey,
			FileName:   p.FileName,
			FileType:   p.FileType,
			URL:        urls[p.StorageKey],
		})
	}
	return out
}

// ToVersionSummaryDTO converts a version to a history row
func ToVersionSummaryDTO(v *domain.ProjectVersion) domain.ProjectVersionSummaryDTO {
	dto := domain.ProjectVersionSummaryDTO{
		ID:                    v.ID,
		VersionNumber:         v.VersionNumber,
		YesterdayReportStatus: v.YesterdayReportStatus,
		CreatedByID:           v.CreatedByID,
		CreatedAt:             FormatTime(v.CreatedAt),
	}
	if n := len(v.Comments); n > 0 {
		dto.LastAction = string(v.Comments[n-1].Action)
	}
	return dto
}

// ToProjectProgressDTO summarizes a latest version for the overview dashboard
func ToProjectProgressDTO(v *domain.ProjectVersion) domain.ProjectProgressDTO {
	return domain.ProjectProgressDTO{
		ProjectID:          v.ProjectID,
		VersionID:          v.ID,
		ProjectName:        v.ProjectName,
		ProjectManagerID:   v.ProjectManagerID,
		ProjectManagerName: v.ProjectManagerName,
		Status:             v.Status,
		ReportStatus:       v.YesterdayReportStatus,
		OverallProgress:    ledger.OverallProgress(v.Sheet1),
		OpenBlockages:      CountOpenBlockages(v.Sheet1),
	}
}

// CountOpenBlockages counts blockages that are still open across a sheet
func CountOpenBlockages(sheet []domain.LineItem) int {
	n := 0
	for _, item := range sheet {
		for _, b := range item.Blockages {
			if b.Status == domain.BlockageStatusOpen {
				n++
			}
		}
	}
	return n
}

// FormatError creates a formatted error message
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", operation, entity, err)
}
