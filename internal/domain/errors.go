package domain

import "errors"

var (
	// ErrRecordNotFound signals a missing index record.
	ErrRecordNotFound = errors.New("index record not found")
	// ErrEntityNotFound signals a missing source entity.
	ErrEntityNotFound = errors.New("source entity not found")
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRebuildInProgress signals that a full index rebuild is already running.
	ErrRebuildInProgress = errors.New("index rebuild already in progress")
	// ErrSearchFailed signals a query-construction or store failure during search.
	ErrSearchFailed = errors.New("search failed")
)
