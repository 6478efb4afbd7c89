package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yatube/yatube/internal/models"
)

// translateError maps driver-level integrity failures onto models.ErrConstraintViolation
// and leaves every other error untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %v", models.ErrConstraintViolation, err)
	}
	return err
}

func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	// SQLSTATE class 23: integrity constraint violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}

	// sqlite reports "UNIQUE constraint failed", "CHECK constraint failed", ...
	return strings.Contains(err.Error(), "constraint failed")
}
