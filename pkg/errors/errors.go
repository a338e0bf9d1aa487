package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the outermost AppError in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

var (
	ErrConfigLoad        = "CONFIG_LOAD_ERROR"
	ErrDatabaseConnect   = "DATABASE_CONNECT_ERROR"
	ErrValidation        = "VALIDATION_ERROR"
	ErrNotFound          = "NOT_FOUND"
	ErrPredictionPersist = "PREDICTION_PERSIST_ERROR"
	ErrAggregation       = "AGGREGATION_ERROR"
	ErrAuditWrite        = "AUDIT_WRITE_ERROR"
	ErrSettlement        = "SETTLEMENT_ERROR"
	ErrBackup            = "BACKUP_ERROR"
)
