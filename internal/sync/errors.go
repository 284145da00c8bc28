package sync

import "errors"

// Sentinel errors for the sync package
var (
	// ErrNoEntries indicates the sitemap yielded no entries after filtering
	ErrNoEntries = errors.New("no entries to sync")

	// ErrSanityCheckFailed indicates the entry count dropped too far below
	// the previous run
	ErrSanityCheckFailed = errors.New("entry count sanity check failed")

	// ErrTooManyFailures indicates the per-entry failure ratio exceeded the
	// configured limit
	ErrTooManyFailures = errors.New("too many fetch failures")

	// ErrNoSuccess indicates not a single entry synced successfully
	ErrNoSuccess = errors.New("no entries synced successfully")

	// ErrMissingRequired indicates a required file is absent from the snapshot
	ErrMissingRequired = errors.New("required file missing from snapshot")
)
