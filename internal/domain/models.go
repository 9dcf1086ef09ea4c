package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns a UUID when the caller did not provide one
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UserRole is the role of an acting principal
type UserRole string

const (
	RoleManagingDirector UserRole = "MANAGING_DIRECTOR"
	RoleHeadOfPlanning   UserRole = "HEAD_OF_PLANNING"
	RoleProjectManager   UserRole = "PROJECT_MANAGER"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleManagingDirector, RoleHeadOfPlanning, RoleProjectManager:
		return true
	}
	return false
}

// ReportStatus is the daily report lifecycle state of a project version
type ReportStatus string

const (
	ReportStatusNotCreated ReportStatus = "NOT_CREATED"
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusApproved   ReportStatus = "APPROVED"
	ReportStatusRejected   ReportStatus = "REJECTED"
)

// IsValid checks if the ReportStatus is a valid enum value
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusNotCreated, ReportStatusPending, ReportStatusApproved, ReportStatusRejected:
		return true
	}
	return false
}

// ProjectStatus represents the execution status of a project
type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "PLANNED"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
)

// ProjectPriority represents the priority of a project
type ProjectPriority string

const (
	ProjectPriorityLow    ProjectPriority = "LOW"
	ProjectPriorityMedium ProjectPriority = "MEDIUM"
	ProjectPriorityHigh   ProjectPriority = "HIGH"
)

// BlockageType tags which side caused an impediment
type BlockageType string

const (
	BlockageTypeClient   BlockageType = "CLIENT"
	BlockageTypeInternal BlockageType = "INTERNAL"
)

// IsValid checks if the BlockageType is a valid enum value
func (t BlockageType) IsValid() bool {
	return t == BlockageTypeClient || t == BlockageTypeInternal
}

// BlockageSeverity represents how badly a blockage affects progress
type BlockageSeverity string

const (
	BlockageSeverityLow    BlockageSeverity = "LOW"
	BlockageSeverityMedium BlockageSeverity = "MEDIUM"
	BlockageSeverityHigh   BlockageSeverity = "HIGH"
)

// IsValid checks if the BlockageSeverity is a valid enum value
func (s BlockageSeverity) IsValid() bool {
	switch s {
	case BlockageSeverityLow, BlockageSeverityMedium, BlockageSeverityHigh:
		return true
	}
	return false
}

// BlockageStatus is the open/closed state of a blockage
type BlockageStatus string

const (
	BlockageStatusOpen   BlockageStatus = "OPEN"
	BlockageStatusClosed BlockageStatus = "CLOSED"
)

// CommentAction tags the audit entry appended to a version's comment log
type CommentAction string

const (
	CommentActionCreated        CommentAction = "CREATED"
	CommentActionUpdated        CommentAction = "UPDATED"
	CommentActionSubmitted      CommentAction = "SUBMITTED"
	CommentActionApproved       CommentAction = "APPROVED"
	CommentActionRejected       CommentAction = "REJECTED"
	CommentActionComment        CommentAction = "COMMENT"
	CommentActionBlockageClosed CommentAction = "BLOCKAGE_CLOSED"
	CommentActionDocumentAdded  CommentAction = "DOCUMENT_ADDED"
)

// Project is the identity and ownership record. Its state lives in ProjectVersion rows.
type Project struct {
	BaseModel
	Name             string    `gorm:"type:varchar(200);not null;index"`
	CreatorID        uuid.UUID `gorm:"type:uuid;not null;column:creator_id"`
	ProjectManagerID uuid.UUID `gorm:"type:uuid;not null;column:project_manager_id;index"`
}

// ProjectVersion is an immutable snapshot of a project. Versions are appended, never updated;
// the row with the highest version number for a project is the latest.
type ProjectVersion struct {
	ID                       uint              `gorm:"primaryKey;autoIncrement"`
	ProjectID                uuid.UUID         `gorm:"type:uuid;not null;column:project_id;uniqueIndex:idx_project_versions_number,priority:1"`
	VersionNumber            int               `gorm:"not null;column:version_number;uniqueIndex:idx_project_versions_number,priority:2"`
	ProjectName              string            `gorm:"type:varchar(200);not null;column:project_name"`
	ProjectManagerID         uuid.UUID         `gorm:"type:uuid;not null;column:project_manager_id;index"`
	ProjectManagerName       string            `gorm:"type:varchar(200);column:project_manager_name"`
	ClientName               string            `gorm:"type:varchar(200);column:client_name"`
	ClientContactPerson      string            `gorm:"type:varchar(200);column:client_contact_person"`
	ClientEmails             []string          `gorm:"type:jsonb;serializer:json;column:client_emails"`
	SiteLocation             string            `gorm:"type:varchar(500);column:site_location"`
	Status                   ProjectStatus     `gorm:"type:varchar(50);not null;index"`
	Priority                 ProjectPriority   `gorm:"type:varchar(50);not null"`
	EstimatedStartDate       *time.Time        `gorm:"column:estimated_start_date"`
	EstimatedEndDate         *time.Time        `gorm:"column:estimated_end_date;index"`
	YesterdayReportStatus    ReportStatus      `gorm:"type:varchar(50);not null;column:yesterday_report_status;index"`
	YesterdayReportCreatedAt *time.Time        `gorm:"column:yesterday_report_created_at"`
	Comments                 []Comment         `gorm:"type:jsonb;serializer:json"`
	Documents                []ProjectDocument `gorm:"type:jsonb;serializer:json"`
	Sheet1                   []LineItem        `gorm:"type:jsonb;serializer:json;column:sheet1"`
	CreatedByID              uuid.UUID         `gorm:"type:uuid;not null;column:created_by_id"`
	CreatedAt                time.Time         `gorm:"not null;index"`
}

// LineItem is a top-level bill-of-quantities entry (Sheet1).
// YetTo* and Percent* are derived; the ledger recomputes them from the totals.
type LineItem struct {
	ID                     string        `json:"id"`
	ItemName               string        `json:"itemName"`
	Unit                   string        `json:"unit"`
	TotalQuantity          float64       `json:"totalQuantity"`
	TotalSupplied          float64       `json:"totalSupplied"`
	TotalInstalled         float64       `json:"totalInstalled"`
	YetToSupply            float64       `json:"yetToSupply"`
	YetToInstall           float64       `json:"yetToInstall"`
	PercentSupplied        int           `json:"percentSupplied"`
	PercentInstalled       int           `json:"percentInstalled"`
	SupplyTargetDate       *time.Time    `json:"supplyTargetDate,omitempty"`
	InstallationTargetDate *time.Time    `json:"installationTargetDate,omitempty"`
	SubItems               []SubItem     `json:"sheet2"`
	Blockages              []Blockage    `json:"blockages"`
	ProgressReports        []PhotoReport `json:"progressReports"`
}

// SubItem is a child breakdown of a LineItem (Sheet2)
type SubItem struct {
	ID                      string                   `json:"id"`
	SubItemName             string                   `json:"subItemName"`
	Unit                    string                   `json:"unit"`
	TotalQuantity           float64                  `json:"totalQuantity"`
	TotalSupplied           float64                  `json:"totalSupplied"`
	TotalInstalled          float64                  `json:"totalInstalled"`
	YetToSupply             float64                  `json:"yetToSupply"`
	YetToInstall            float64                  `json:"yetToInstall"`
	PercentSupplied         int                      `json:"percentSupplied"`
	PercentInstalled        int                      `json:"percentInstalled"`
	ConnectWithSheet1Item   bool                     `json:"connectWithSheet1Item"`
	YesterdayProgressReport *YesterdayProgressReport `json:"yesterdayProgressReport,omitempty"`
}

// YesterdayProgressReport is the most recent daily delta recorded for a sub-item.
// CommittedAt is set once the roll-up has folded the delta into the cumulative totals.
type YesterdayProgressReport struct {
	YesterdaySupplied  float64    `json:"yesterdaySupplied"`
	YesterdayInstalled float64    `json:"yesterdayInstalled"`
	RecordedAt         time.Time  `json:"recordedAt"`
	CommittedAt        *time.Time `json:"committedAt,omitempty"`
}

// IsStaged reports whether the delta still waits for a roll-up commit
func (r *YesterdayProgressReport) IsStaged() bool {
	return r != nil && r.CommittedAt == nil
}

// Photo references an object in storage. URLs are resolved at read time and never stored.
type Photo struct {
	StorageKey string `json:"storageKey"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType"`
}

// PhotoReport is a free-form progress photo submission against a line item
type PhotoReport struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Photos      []Photo   `json:"photos"`
	CreatedByID uuid.UUID `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Blockage is an impediment logged against a line item
type Blockage struct {
	ID              string           `json:"id"`
	Type            BlockageType     `json:"type"`
	Category        string           `json:"category"`
	Severity        BlockageSeverity `json:"severity"`
	Description     string           `json:"description"`
	WeatherReport   string           `json:"weatherReport"`
	OpenDate        time.Time        `json:"openDate"`
	Status          BlockageStatus   `json:"status"`
	BlockageEndTime *time.Time       `json:"blockageEndTime,omitempty"`
	Photos          []Photo          `json:"photos"`
	CreatedByID     uuid.UUID        `json:"createdById"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Comment is an append-only audit entry on a project version
type Comment struct {
	AuthorID   uuid.UUID     `json:"authorId"`
	AuthorName string        `json:"authorName"`
	AuthorRole UserRole      `json:"authorRole"`
	Action     CommentAction `json:"action"`
	Text       string        `json:"text"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// ProjectDocument is a file attached to a project
type ProjectDocument struct {
	ID         string    `json:"id"`
	StorageKey string    `json:"storageKey"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadFolder groups uploaded objects by purpose
type UploadFolder string

const (
	UploadFolderPhotos    UploadFolder = "photos"
	UploadFolderBlockages UploadFolder = "blockages"
	UploadFolderDocuments UploadFolder = "documents"
	UploadFolderReports   UploadFolder = "reports"
)

// UploadSlot records a time-limited, single-use upload grant.
// A slot is consumed when a persisted version first references its key.
type UploadSlot struct {
	BaseModel
	StorageKey    string       `gorm:"type:varchar(500);not null;uniqueIndex;column:storage_key"`
	FileName      string       `gorm:"type:varchar(255);not null;column:file_name"`
	ContentType   string       `gorm:"type:varchar(100);not null;column:content_type"`
	Folder        UploadFolder `gorm:"type:varchar(50);not null"`
	Size          int64        `gorm:"not null;default:0"`
	RequestedByID uuid.UUID    `gorm:"type:uuid;not null;column:requested_by_id"`
	ExpiresAt     time.Time    `gorm:"not null;index;column:expires_at"`
	UploadedAt    *time.Time   `gorm:"column:uploaded_at"`
	ConsumedAt    *time.Time   `gorm:"column:consumed_at;index"`
}

// TableName overrides
func (UploadSlot) TableName() string {
	return "upload_slots"
}
