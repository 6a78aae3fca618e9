package client

import (
	"database/sql"
	"errors"
	"strings"

	clienterrors "attendify/internal/client/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return clienterrors.ErrClientNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return clienterrors.ErrClientReferenceInvalid
	}

	if strings.Contains(strings.ToLower(err.Error()), "violates foreign key constraint") {
		return clienterrors.ErrClientReferenceInvalid
	}

	return err
}

func mapVisitRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return clienterrors.ErrVisitNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return clienterrors.ErrClientReferenceInvalid
	}

	if strings.Contains(strings.ToLower(err.Error()), "violates foreign key constraint") {
		return clienterrors.ErrClientReferenceInvalid
	}

	return err
}
