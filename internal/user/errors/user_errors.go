package errors

import (
	"net/http"

	"attendify/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrUsernameAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Username is already taken",
		http.StatusBadRequest,
	)

	ErrNotPermitted = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to perform this action",
		http.StatusForbidden,
	)
)
