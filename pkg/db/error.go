package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

func IsForeignKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	// PostgreSQL (error code 23503)
	if strings.Contains(err.Error(), "violates foreign key constraint") {
		return true
	}

	// MySQL (error codes 1451/1452)
	if strings.Contains(err.Error(), "Error 1451") || strings.Contains(err.Error(), "Error 1452") {
		return true
	}

	// SQLite (error code 787)
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return true
	}

	return false
}

func IsCheckConstraintErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	// PostgreSQL (error code 23514)
	if strings.Contains(err.Error(), "violates check constraint") {
		return true
	}

	// SQLite (error code 275)
	if strings.Contains(err.Error(), "CHECK constraint failed") {
		return true
	}

	return false
}
