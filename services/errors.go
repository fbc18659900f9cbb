package services

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrRoomUnavailable    = errors.New("room unavailable")
	ErrFolioNotOpen       = errors.New("folio is not open")
	ErrBalanceOutstanding = errors.New("folio balance outstanding")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// notFound converts gorm's record-not-found into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// IsDuplicateKey reports unique-constraint violations across drivers.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return false
}
