package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Categories understood by hosts.
const (
	CategoryInstrument = "Instrument"
	CategoryFx         = "Fx"
	CategoryNoteEffect = "Note Effect"
)

// Info contains plugin metadata
type Info struct {
	ID          string // Unique reverse-domain identifier (e.g., "com.example.myplugin")
	Name        string // Display name
	Version     string // Semantic version (e.g., "1.0.0")
	Vendor      string // Company/developer name
	URL         string
	Email       string
	Description string
	Category    string   // Plugin category (e.g., "Fx", "Instrument")
	Features    []string // Host feature tags
}

// UID derives the 16-byte class ID hosts use to identify the plugin. It is
// a name-based (SHA-1) UUID of the ID, so it never changes between builds.
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(i.ID))
}

// ValidateUID checks that the ID can produce a stable UID.
func (i Info) ValidateUID() error {
	if i.ID == "" {
		return errors.New("plugin ID is empty")
	}
	if !strings.Contains(i.ID, ".") || strings.ContainsAny(i.ID, " \t\n") {
		return fmt.Errorf("plugin ID %q is not a reverse-domain identifier", i.ID)
	}
	return nil
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", i.Name, i.Version, i.Vendor, i.ID)
}
