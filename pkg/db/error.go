package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Not every code path runs through gorm's TranslateError, so duplicate-key
// detection falls back to matching the driver messages.
var duplicateKeyMarkers = []string{
	"duplicate key value violates unique constraint", // postgres, 23505
	"Error 1062",                                     // mysql
	"UNIQUE constraint failed",                       // sqlite
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
