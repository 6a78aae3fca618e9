package employee

import (
	"errors"
	"strings"

	employeeerrors "attendify/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			switch pgErr.ConstraintName {
			case "uq_employees_email":
				return employeeerrors.ErrEmailAlreadyExists
			case "uq_employees_phone":
				return employeeerrors.ErrPhoneAlreadyExists
			}
		case "23503":
			return employeeerrors.ErrEmployeeReferenceInvalid
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employees_email") {
		return employeeerrors.ErrEmailAlreadyExists
	}
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employees_phone") {
		return employeeerrors.ErrPhoneAlreadyExists
	}

	return err
}

func mapAttendanceRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrAttendanceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return employeeerrors.ErrEmployeeReferenceInvalid
	}

	return err
}
