package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level database error sentinels.
var (
	// Exclusion keyword errors
	ErrKeywordRequired = errors.New("keyword is required")
	ErrKeywordInvalid  = errors.New("keyword is invalid")
	ErrKeywordActive   = errors.New("keyword is already registered")
	ErrKeywordNotFound = errors.New("exclusion keyword not found")

	// Announcement errors
	ErrAnnouncementNotFound = errors.New("announcement not found")

	// Subvention errors
	ErrSubventionNotFound = errors.New("subvention not found")
)

// PostgreSQL error codes inspected by this package.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// StorageError is a transaction failure, timeout, or deadlock. The unit of
// work was rolled back and is safe to retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsValidationError reports whether err rejects the caller's input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrKeywordRequired) || errors.Is(err, ErrKeywordInvalid)
}

// storageErr wraps err unless it is nil, already a StorageError, or a domain
// sentinel that callers match on.
func storageErr(op string, err error) error {
	if err == nil || IsStorageError(err) || isDomainError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	for _, sentinel := range []error{
		ErrKeywordRequired,
		ErrKeywordInvalid,
		ErrKeywordActive,
		ErrKeywordNotFound,
		ErrAnnouncementNotFound,
		ErrSubventionNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

// isRetryable reports whether a transaction lost a concurrency conflict and
// may succeed when re-run from the start.
func isRetryable(err error) bool {
	switch pgErrorCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
