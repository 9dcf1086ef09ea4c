// Package policy is the single place role rules live. Services ask it
// whether a role may move a report between states or edit a field.
package policy

import (
	"github.com/google/uuid"

	"github.com/straye-as/progress-api/internal/domain"
)

// Field is an editable area of a project version
type Field string

const (
	FieldHeader         Field = "header"
	FieldManager        Field = "manager"
	FieldQuantities     Field = "quantities"
	FieldTargetDates    Field = "targetDates"
	FieldDailyProgress  Field = "dailyProgress"
	FieldComment        Field = "comment"
	FieldDocument       Field = "document"
	FieldBlockageStatus Field = "blockageStatus"
)

type transition struct {
	from domain.ReportStatus
	to   domain.ReportStatus
}

var managerTransitions = map[transition]bool{
	{domain.ReportStatusNotCreated, domain.ReportStatusPending}: true,
	{domain.ReportStatusRejected, domain.ReportStatusPending}:   true,
	{domain.ReportStatusApproved, domain.ReportStatusPending}:   true,
	{domain.ReportStatusPending, domain.ReportStatusPending}:    true,
}

var reviewerTransitions = map[transition]bool{
	{domain.ReportStatusPending, domain.ReportStatusApproved}: true,
	{domain.ReportStatusPending, domain.ReportStatusRejected}: true,
}

var editableFields = map[domain.UserRole]map[Field]bool{
	domain.RoleProjectManager: {
		FieldDailyProgress:  true,
		FieldComment:        true,
		FieldDocument:       true,
		FieldBlockageStatus: true,
	},
	domain.RoleHeadOfPlanning: {
		FieldHeader:         true,
		FieldManager:        true,
		FieldQuantities:     true,
		FieldTargetDates:    true,
		FieldComment:        true,
		FieldDocument:       true,
		FieldBlockageStatus: true,
	},
	domain.RoleManagingDirector: {
		FieldHeader:         true,
		FieldManager:        true,
		FieldQuantities:     true,
		FieldTargetDates:    true,
		FieldComment:        true,
		FieldDocument:       true,
		FieldBlockageStatus: true,
	},
}

// IsReviewer reports whether the role reviews daily reports
func IsReviewer(role domain.UserRole) bool {
	return role == domain.RoleHeadOfPlanning || role == domain.RoleManagingDirector
}

// CanTransition reports whether a role may move a report from one state to another.
// Submissions are manager-only; approval and rejection are reviewer-only.
func CanTransition(role domain.UserRole, from, to domain.ReportStatus) bool {
	t := transition{from: from, to: to}
	switch {
	case role == domain.RoleProjectManager:
		return managerTransitions[t]
	case IsReviewer(role):
		return reviewerTransitions[t]
	}
	return false
}

// CanEdit reports whether a role may change a field of a project version
func CanEdit(role domain.UserRole, field Field) bool {
	return editableFields[role][field]
}

// CanCreateProject reports whether a role may create projects
func CanCreateProject(role domain.UserRole) bool {
	return IsReviewer(role)
}

// CanView reports whether the actor may see a project managed by managerID.
// Reviewers see every project, managers only their own.
func CanView(role domain.UserRole, actorID, managerID uuid.UUID) bool {
	if IsReviewer(role) {
		return true
	}
	return role == domain.RoleProjectManager && actorID == managerID
}

// IsAssignedManager reports whether the actor is the project manager assigned to the version
func IsAssignedManager(role domain.UserRole, actorID uuid.UUID, v *domain.ProjectVersion) bool {
	return role == domain.RoleProjectManager && v != nil && v.ProjectManagerID == actorID
}
