package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when the request conflicts with the current state
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotAssignedManager is returned when a project manager acts on a project assigned to someone else
	ErrNotAssignedManager = errors.New("user is not the assigned project manager")

	// ErrInvalidTransition is returned when a report cannot move to the requested state
	ErrInvalidTransition = errors.New("invalid report status transition")

	// ErrVersionConflict is returned when the base version is no longer the latest.
	// The client should reload the project and retry.
	ErrVersionConflict = errors.New("project has been changed since it was loaded")

	// ErrCommentRequired is returned when a rejection carries no comment
	ErrCommentRequired = errors.New("a comment is required to reject a report")

	// ErrNoChanges is returned when an update request carries no edits
	ErrNoChanges = errors.New("no changes requested")

	// ErrBlockageClosed is returned when closing a blockage that is already closed
	ErrBlockageClosed = errors.New("blockage is already closed")

	// ErrUploadIncomplete is returned when a referenced upload has not reached storage
	ErrUploadIncomplete = errors.New("referenced upload has not completed")

	// ErrUnknownUpload is returned when a referenced storage key was never issued
	ErrUnknownUpload = errors.New("unknown upload key")

	// ErrUploadTooLarge is returned when an upload body exceeds the configured limit
	ErrUploadTooLarge = errors.New("upload exceeds the maximum size")

	// ErrUploadNotSupported is returned by direct upload endpoints when storage signs its own URLs
	ErrUploadNotSupported = errors.New("direct uploads are not served by this storage mode")

	// ErrStorageUnavailable is returned when object storage fails
	ErrStorageUnavailable = errors.New("object storage unavailable")
)
