package errors

import (
	"net/http"

	"attendify/internal/shared/apperror"
)

var (
	ErrClientNotFound = apperror.New(
		apperror.CodeNotFound,
		"Client not found",
		http.StatusNotFound,
	)

	ErrVisitNotFound = apperror.New(
		apperror.CodeNotFound,
		"Visit history not found",
		http.StatusNotFound,
	)

	ErrClientReferenceInvalid = apperror.New(
		apperror.CodeConflict,
		"Referenced client does not exist",
		http.StatusBadRequest,
	)

	ErrInvalidDatetime = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid datetime format, expected RFC 3339",
		http.StatusBadRequest,
	)
)
