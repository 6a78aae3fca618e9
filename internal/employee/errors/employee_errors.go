package errors

import (
	"net/http"

	"attendify/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)

	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)

	// Uniqueness and FK violations surface as 400s, not 409s: the API
	// treats them as input errors against the current dataset.
	ErrEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Email is already in use",
		http.StatusBadRequest,
	)

	ErrPhoneAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Phone number is already in use",
		http.StatusBadRequest,
	)

	ErrEmployeeReferenceInvalid = apperror.New(
		apperror.CodeConflict,
		"Referenced employee does not exist",
		http.StatusBadRequest,
	)

	ErrInvalidDatetime = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid datetime format, expected RFC 3339",
		http.StatusBadRequest,
	)
)
