package domain

import (
	"time"

	"github.com/google/uuid"
)

// Response DTOs

// PhotoDTO is a stored photo reference with a freshly resolved download URL
type PhotoDTO struct {
	StorageKey string `json:"storageKey"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType"`
	URL        string `json:"url,omitempty"`
}

type PhotoReportDTO struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Photos      []PhotoDTO `json:"photos"`
	CreatedByID uuid.UUID  `json:"createdById"`
	CreatedAt   string     `json:"createdAt"` // ISO 8601
}

type BlockageDTO struct {
	ID              string           `json:"id"`
	LineItemID      string           `json:"lineItemId"`
	LineItemName    string           `json:"lineItemName"`
	Type            BlockageType     `json:"type"`
	Category        string           `json:"category"`
	Severity        BlockageSeverity `json:"severity"`
	Description     string           `json:"description"`
	WeatherReport   string           `json:"weatherReport"`
	OpenDate        string           `json:"openDate"`
	Status          BlockageStatus   `json:"status"`
	BlockageEndTime *string          `json:"blockageEndTime,omitempty"`
	Photos          []PhotoDTO       `json:"photos"`
	CreatedByID     uuid.UUID        `json:"createdById"`
	CreatedAt       string           `json:"createdAt"`
}

type YesterdayProgressReportDTO struct {
	YesterdaySupplied  float64 `json:"yesterdaySupplied"`
	YesterdayInstalled float64 `json:"yesterdayInstalled"`
	RecordedAt         string  `json:"recordedAt"`
	Committed          bool    `json:"committed"`
}

type SubItemDTO struct {
	ID                      string                      `json:"id"`
	SubItemName             string                      `json:"subItemName"`
	Unit                    string                      `json:"unit"`
	TotalQuantity           float64                     `json:"totalQuantity"`
	TotalSupplied           float64                     `json:"totalSupplied"`
	TotalInstalled          float64                     `json:"totalInstalled"`
	YetToSupply             float64                     `json:"yetToSupply"`
	YetToInstall            float64                     `json:"yetToInstall"`
	PercentSupplied         int                         `json:"percentSupplied"`
	PercentInstalled        int                         `json:"percentInstalled"`
	ConnectWithSheet1Item   bool                        `json:"connectWithSheet1Item"`
	YesterdayProgressReport *YesterdayProgressReportDTO `json:"yesterdayProgressReport,omitempty"`
}

type LineItemDTO struct {
	ID                     string           `json:"id"`
	ItemName               string           `json:"itemName"`
	Unit                   string           `json:"unit"`
	TotalQuantity          float64          `json:"totalQuantity"`
	TotalSupplied          float64          `json:"totalSupplied"`
	TotalInstalled         float64          `json:"totalInstalled"`
	YetToSupply            float64          `json:"yetToSupply"`
	YetToInstall           float64          `json:"yetToInstall"`
	PercentSupplied        int              `json:"percentSupplied"`
	PercentInstalled       int              `json:"percentInstalled"`
	SupplyTargetDate       *string          `json:"supplyTargetDate,omitempty"`
	InstallationTargetDate *string          `json:"installationTargetDate,omitempty"`
	SubItems               []SubItemDTO     `json:"sheet2"`
	Blockages              []BlockageDTO    `json:"blockages"`
	ProgressReports        []PhotoReportDTO `json:"progressReports"`
}

type CommentDTO struct {
	AuthorID   uuid.UUID     `json:"authorId"`
	AuthorName string        `json:"authorName"`
	AuthorRole UserRole      `json:"authorRole"`
	Action     CommentAction `json:"action"`
	Text       string        `json:"text"`
	CreatedAt  string        `json:"createdAt"`
}

type ProjectDocumentDTO struct {
	ID         string `json:"id"`
	StorageKey string `json:"storageKey"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType"`
	URL        string `json:"url,omitempty"`
	UploadedAt string `json:"uploadedAt"`
}

// ProjectVersionDTO is a fully resolved project snapshot
type ProjectVersionDTO struct {
	ID                       uint                 `json:"id"`
	ProjectID                uuid.UUID            `json:"projectId"`
	VersionNumber            int                  `json:"versionNumber"`
	ProjectName              string               `json:"projectName"`
	ProjectManagerID         uuid.UUID            `json:"projectManagerId"`
	ProjectManagerName       string               `json:"projectManagerName,omitempty"`
	ClientName               string               `json:"clientName,omitempty"`
	ClientContactPerson      string               `json:"clientContactPerson,omitempty"`
	ClientEmails             []string             `json:"clientEmails"`
	SiteLocation             string               `json:"siteLocation,omitempty"`
	Status                   ProjectStatus        `json:"status"`
	Priority                 ProjectPriority      `json:"priority"`
	EstimatedStartDate       *string              `json:"estimatedStartDate,omitempty"`
	EstimatedEndDate         *string              `json:"estimatedEndDate,omitempty"`
	YesterdayReportStatus    ReportStatus         `json:"yesterdayReportStatus"`
	YesterdayReportCreatedAt *string              `json:"yesterdayReportCreatedAt,omitempty"`
	OverallProgress          int                  `json:"overallProgress"`
	Comments                 []CommentDTO         `json:"comments"`
	Documents                []ProjectDocumentDTO `json:"documents"`
	Sheet1                   []LineItemDTO        `json:"sheet1"`
	CreatedByID              uuid.UUID            `json:"createdById"`
	CreatedAt                string               `json:"createdAt"`
}

// ProjectVersionSummaryDTO is a history row without the ledger payload
type ProjectVersionSummaryDTO struct {
	ID                    uint         `json:"id"`
	VersionNumber         int          `json:"versionNumber"`
	YesterdayReportStatus ReportStatus `json:"yesterdayReportStatus"`
	CreatedByID           uuid.UUID    `json:"createdById"`
	CreatedAt             string       `json:"createdAt"`
	LastAction            string       `json:"lastAction,omitempty"`
}

// TransitionResult is returned by every lifecycle endpoint. Warnings carry
// failures that happened after the version was committed.
type TransitionResult struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	Warnings []string           `json:"warnings,omitempty"`
	Version  *ProjectVersionDTO `json:"version,omitempty"`
}

// ValidationResultDTO is returned by the daily report dry run. NextLineItemID
// is the line item following the last one reported.
type ValidationResultDTO struct {
	Valid          bool              `json:"valid"`
	Errors         map[string]string `json:"errors,omitempty"`
	Complete       bool              `json:"complete"`
	NextLineItemID string            `json:"nextLineItemId,omitempty"`
}

type UploadSlotDTO struct {
	UploadKey string            `json:"uploadKey"`
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt string            `json:"expiresAt"`
}

type DownloadURLDTO struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Dashboard DTOs

type ProjectProgressDTO struct {
	ProjectID          uuid.UUID     `json:"projectId"`
	VersionID          uint          `json:"versionId"`
	ProjectName        string        `json:"projectName"`
	ProjectManagerID   uuid.UUID     `json:"projectManagerId"`
	ProjectManagerName string        `json:"projectManagerName,omitempty"`
	Status             ProjectStatus `json:"status"`
	ReportStatus       ReportStatus  `json:"reportStatus"`
	OverallProgress    int           `json:"overallProgress"`
	OpenBlockages      int           `json:"openBlockages"`
}

type ManagerRollupDTO struct {
	ProjectManagerID      uuid.UUID `json:"projectManagerId"`
	ProjectManagerName    string    `json:"projectManagerName,omitempty"`
	ProjectCount          int       `json:"projectCount"`
	ReportsWithDailyData  int       `json:"reportsWithDailyData"`
	AverageInstallPercent int       `json:"averageInstallPercent"`
}

type DeadlineAlertDTO struct {
	ProjectID        uuid.UUID    `json:"projectId"`
	ProjectName      string       `json:"projectName"`
	EstimatedEndDate string       `json:"estimatedEndDate"`
	DaysRemaining    int          `json:"daysRemaining"`
	ReportStatus     ReportStatus `json:"reportStatus"`
}

// ActivityKind tags entries of the recent-activity feed
type ActivityKind string

const (
	ActivityKindPhotoReport ActivityKind = "PHOTO_REPORT"
	ActivityKindBlockage    ActivityKind = "BLOCKAGE"
)

type ActivityDTO struct {
	Kind         ActivityKind      `json:"kind"`
	ID           string            `json:"id"`
	ProjectID    uuid.UUID         `json:"projectId"`
	ProjectName  string            `json:"projectName"`
	LineItemID   string            `json:"lineItemId"`
	LineItemName string            `json:"lineItemName"`
	Description  string            `json:"description"`
	Severity     *BlockageSeverity `json:"severity,omitempty"`
	Type         *BlockageType     `json:"type,omitempty"`
	PhotoCount   int               `json:"photoCount"`
	CreatedAt    string            `json:"createdAt"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Request DTOs

type SubItemInput struct {
	ID                    string  `json:"id,omitempty" validate:"max=100"`
	SubItemName           string  `json:"subItemName" validate:"required,max=200"`
	Unit                  string  `json:"unit" validate:"required,max=50"`
	TotalQuantity         float64 `json:"totalQuantity" validate:"gte=0"`
	TotalSupplied         float64 `json:"totalSupplied" validate:"gte=0"`
	TotalInstalled        float64 `json:"totalInstalled" validate:"gte=0"`
	ConnectWithSheet1Item bool    `json:"connectWithSheet1Item"`
}

type LineItemInput struct {
	ID                     string         `json:"id,omitempty" validate:"max=100"`
	ItemName               string         `json:"itemName" validate:"required,max=200"`
	Unit                   string         `json:"unit" validate:"required,max=50"`
	TotalQuantity          float64        `json:"totalQuantity" validate:"gte=0"`
	TotalSupplied          float64        `json:"totalSupplied" validate:"gte=0"`
	TotalInstalled         float64        `json:"totalInstalled" validate:"gte=0"`
	SupplyTargetDate       *time.Time     `json:"supplyTargetDate,omitempty"`
	InstallationTargetDate *time.Time     `json:"installationTargetDate,omitempty"`
	SubItems               []SubItemInput `json:"sheet2" validate:"dive"`
}

type CreateProjectRequest struct {
	Name                string          `json:"name" validate:"required,max=200"`
	ProjectManagerID    uuid.UUID       `json:"projectManagerId" validate:"required"`
	ProjectManagerName  string          `json:"projectManagerName,omitempty" validate:"max=200"`
	ClientName          string          `json:"clientName,omitempty" validate:"max=200"`
	ClientContactPerson string          `json:"clientContactPerson,omitempty" validate:"max=200"`
	ClientEmails        []string        `json:"clientEmails,omitempty" validate:"dive,email"`
	SiteLocation        string          `json:"siteLocation,omitempty" validate:"max=500"`
	Status              ProjectStatus   `json:"status" validate:"required,oneof=PLANNED ACTIVE ON_HOLD COMPLETED"`
	Priority            ProjectPriority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
	EstimatedStartDate  *time.Time      `json:"estimatedStartDate,omitempty"`
	EstimatedEndDate    *time.Time      `json:"estimatedEndDate,omitempty"`
	Sheet1              []LineItemInput `json:"sheet1" validate:"dive"`
}

type SubItemEdit struct {
	SubItemID             string   `json:"subItemId" validate:"required"`
	TotalQuantity         *float64 `json:"totalQuantity,omitempty" validate:"omitempty,gte=0"`
	TotalSupplied         *float64 `json:"totalSupplied,omitempty" validate:"omitempty,gte=0"`
	TotalInstalled        *float64 `json:"totalInstalled,omitempty" validate:"omitempty,gte=0"`
	ConnectWithSheet1Item *bool    `json:"connectWithSheet1Item,omitempty"`
}

type LineItemEdit struct {
	LineItemID             string         `json:"lineItemId" validate:"required"`
	TotalQuantity          *float64       `json:"totalQuantity,omitempty" validate:"omitempty,gte=0"`
	TotalSupplied          *float64       `json:"totalSupplied,omitempty" validate:"omitempty,gte=0"`
	TotalInstalled         *float64       `json:"totalInstalled,omitempty" validate:"omitempty,gte=0"`
	SupplyTargetDate       *time.Time     `json:"supplyTargetDate,omitempty"`
	InstallationTargetDate *time.Time     `json:"installationTargetDate,omitempty"`
	SubItems               []SubItemEdit  `json:"sheet2,omitempty" validate:"dive"`
	NewSubItems            []SubItemInput `json:"newSheet2,omitempty" validate:"dive"`
}

// UpdateProjectRequest edits the latest version. Nil fields are left unchanged.
type UpdateProjectRequest struct {
	BaseVersionID       uint             `json:"baseVersionId" validate:"required"`
	Name                *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	ProjectManagerID    *uuid.UUID       `json:"projectManagerId,omitempty"`
	ProjectManagerName  *string          `json:"projectManagerName,omitempty" validate:"omitempty,max=200"`
	ClientName          *string          `json:"clientName,omitempty" validate:"omitempty,max=200"`
	ClientContactPerson *string          `json:"clientContactPerson,omitempty" validate:"omitempty,max=200"`
	ClientEmails        []string         `json:"clientEmails,omitempty" validate:"omitempty,dive,email"`
	SiteLocation        *string          `json:"siteLocation,omitempty" validate:"omitempty,max=500"`
	Status              *ProjectStatus   `json:"status,omitempty" validate:"omitempty,oneof=PLANNED ACTIVE ON_HOLD COMPLETED"`
	Priority            *ProjectPriority `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	EstimatedStartDate  *time.Time       `json:"estimatedStartDate,omitempty"`
	EstimatedEndDate    *time.Time       `json:"estimatedEndDate,omitempty"`
	LineItems           []LineItemEdit   `json:"sheet1,omitempty" validate:"dive"`
	NewLineItems        []LineItemInput  `json:"newSheet1,omitempty" validate:"dive"`
}

type AddCommentRequest struct {
	BaseVersionID uint   `json:"baseVersionId" validate:"required"`
	Text          string `json:"text" validate:"required,max=2000"`
}

type AddDocumentRequest struct {
	BaseVersionID uint   `json:"baseVersionId" validate:"required"`
	StorageKey    string `json:"storageKey" validate:"required,max=500"`
	FileName      string `json:"fileName" validate:"required,max=255"`
	FileType      string `json:"fileType" validate:"required,max=100"`
}

type PhotoInput struct {
	StorageKey string `json:"storageKey" validate:"required,max=500"`
	FileName   string `json:"fileName" validate:"required,max=255"`
	FileType   string `json:"fileType" validate:"required,max=100"`
}

type SubItemDeltaInput struct {
	SubItemID          string  `json:"subItemId" validate:"required"`
	YesterdaySupplied  float64 `json:"yesterdaySupplied" validate:"gte=0"`
	YesterdayInstalled float64 `json:"yesterdayInstalled" validate:"gte=0"`
}

type PhotoReportInput struct {
	Description string       `json:"description" validate:"required,max=2000"`
	Photos      []PhotoInput `json:"photos" validate:"required,min=1,dive"`
}

type BlockageInput struct {
	Type          BlockageType     `json:"type" validate:"required,oneof=CLIENT INTERNAL"`
	Category      string           `json:"category" validate:"required,max=100"`
	Severity      BlockageSeverity `json:"severity" validate:"required,oneof=LOW MEDIUM HIGH"`
	Description   string           `json:"description" validate:"required,max=2000"`
	WeatherReport string           `json:"weatherReport" validate:"required,max=500"`
	OpenDate      time.Time        `json:"openDate" validate:"required"`
	Photos        []PhotoInput     `json:"photos,omitempty" validate:"dive"`
}

// LineItemEntryInput is one step of the daily report walk
type LineItemEntryInput struct {
	LineItemID   string              `json:"lineItemId" validate:"required"`
	SubItems     []SubItemDeltaInput `json:"sheet2,omitempty" validate:"dive"`
	PhotoReports []PhotoReportInput  `json:"progressReports,omitempty" validate:"dive"`
	Blockages    []BlockageInput     `json:"blockages,omitempty" validate:"dive"`
}

type DailyReportRequest struct {
	BaseVersionID uint                 `json:"baseVersionId" validate:"required"`
	Entries       []LineItemEntryInput `json:"entries" validate:"required,min=1,dive"`
}

type ReviewRequest struct {
	BaseVersionID uint   `json:"baseVersionId" validate:"required"`
	Comment       string `json:"comment,omitempty" validate:"max=2000"`
}

type CloseBlockageRequest struct {
	BaseVersionID uint       `json:"baseVersionId" validate:"required"`
	EndTime       *time.Time `json:"endTime,omitempty"`
}

type UploadSlotRequest struct {
	FileName    string       `json:"fileName" validate:"required,max=255"`
	ContentType string       `json:"contentType" validate:"required,max=100"`
	Folder      UploadFolder `json:"folder" validate:"required,oneof=photos blockages documents"`
}

type ResolveURLsRequest struct {
	Keys []string `json:"keys" validate:"required,min=1,max=100,dive,required"`
}
