package domain

import (
	"errors"
	"fmt"
)

// EntryMetadata carries the display hints registered for a queue or a
// processor. Resolution happens per entry and can fail independently of its
// siblings when an entry is misconfigured.
type EntryMetadata struct {
	DisplayName    string `json:"display_name"`
	Description    string `json:"description"`
	Hidden         bool   `json:"hidden"`
	ShowRunCommand bool   `json:"show_run_command"`
}

// ErrMetadataNotFound reports an enumerated queue or processor with no
// registered metadata.
var ErrMetadataNotFound = errors.New("metadata not registered")

// InvalidMetadataError reports a metadata entry that exists but cannot be
// decoded into EntryMetadata.
type InvalidMetadataError struct {
	Key    string
	Reason string
}

func (e InvalidMetadataError) Error() string {
	return fmt.Sprintf("invalid metadata for %q: %s", e.Key, e.Reason)
}
