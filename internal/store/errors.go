package store

import "errors"

var (
	ErrReportNotFound  = errors.New("error report not found")
	ErrInvalidDocument = errors.New("error invalid portfolio document")
)
