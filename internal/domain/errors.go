package domain

import "errors"

var (
	ErrIssueNotFound    = errors.New("issue not found")
	ErrSnapshotNotFound = errors.New("tracking snapshot not found")
	ErrSnapshotCorrupt  = errors.New("tracking snapshot is not well-formed")
)
