package manifest

import "errors"

// Sentinel errors for the manifest package
var (
	// ErrCorrupted indicates the manifest file exists but cannot be parsed
	ErrCorrupted = errors.New("manifest corrupted")

	// ErrMissingURL indicates an entry is missing the required URL field
	ErrMissingURL = errors.New("manifest entry URL cannot be empty")
)
