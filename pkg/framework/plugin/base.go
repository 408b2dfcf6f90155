// Package plugin holds what every plugin shares regardless of what it
// does: host-facing metadata and the processor lifecycle.
package plugin

import (
	"fmt"

	"github.com/google/uuid"
)

// Base carries a plugin's validated metadata and its class ID.
type Base struct {
	info Info
	uid  uuid.UUID
}

// NewBase validates info. It fails if the ID cannot produce a stable UID.
func NewBase(info Info) (*Base, error) {
	if err := info.ValidateUID(); err != nil {
		return nil, fmt.Errorf("plugin %q: %w", info.Name, err)
	}
	if info.Name == "" {
		return nil, fmt.Errorf("plugin %s has no name", info.ID)
	}
	return &Base{info: info, uid: info.UID()}, nil
}

// GetInfo returns the plugin metadata.
func (b *Base) GetInfo() Info {
	return b.info
}

// UID returns the class ID.
func (b *Base) UID() [16]byte {
	return b.uid
}

// ClassID returns the class ID in the 8-4-4-4-12 hex form hosts print.
func (b *Base) ClassID() string {
	return b.uid.String()
}
