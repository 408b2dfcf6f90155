// Package state saves and restores a plugin's parameters and extra data as
// an opaque blob for the host to store with a project.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/jalopymusic/noteseq/pkg/framework/param"
)

var magic = [4]byte{'N', 'S', 'E', 'Q'}

// Version of the blob layout written by Save.
const Version uint32 = 1

// maxCustomSize bounds the extra data Load accepts.
const maxCustomSize = 1 << 20

// ErrBadFormat is returned for blobs that were not written by Save.
var ErrBadFormat = errors.New("invalid state format")

// Custom is implemented by plugins that persist data beyond parameters.
type Custom interface {
	SaveCustom(w io.Writer) error
	LoadCustom(data []byte) error
}

// Manager handles plugin state saving and loading
type Manager struct {
	registry *param.Registry
	custom   Custom
}

// NewManager creates a new state manager. custom may be nil.
func NewManager(registry *param.Registry, custom Custom) *Manager {
	return &Manager{
		registry: registry,
		custom:   custom,
	}
}

// Save writes magic, version, parameter count, (id, value) pairs and a
// length-prefixed custom chunk, little-endian.
func (m *Manager) Save(w io.Writer) error {
	var buf bytes.Buffer
	buf.Write(magic[:])
	le := binary.LittleEndian
	buf.Write(le.AppendUint32(nil, Version))
	buf.Write(le.AppendUint32(nil, uint32(m.registry.Len())))
	m.registry.Each(func(p *param.Parameter) {
		buf.Write(le.AppendUint32(nil, p.ID))
		buf.Write(le.AppendUint64(nil, math.Float64bits(p.GetValue())))
	})

	var custom bytes.Buffer
	if m.custom != nil {
		if err := m.custom.SaveCustom(&custom); err != nil {
			return fmt.Errorf("save custom state: %w", err)
		}
	}
	buf.Write(le.AppendUint32(nil, uint32(custom.Len())))
	buf.Write(custom.Bytes())

	_, err := w.Write(buf.Bytes())
	return err
}

// Load restores a blob written by Save. Unknown parameter IDs are ignored.
// Nothing is applied unless the whole blob parses.
func (m *Manager) Load(r io.Reader) error {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return ErrBadFormat
	}
	if version := binary.LittleEndian.Uint32(header[4:]); version > Version {
		return fmt.Errorf("state version %d is newer than supported version %d", version, Version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if count > 1<<16 {
		return fmt.Errorf("%w: %d parameters", ErrBadFormat, count)
	}

	type entry struct {
		ID    uint32
		Value float64
	}
	entries := make([]entry, count)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}

	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if size > maxCustomSize {
		return fmt.Errorf("%w: custom chunk of %d bytes", ErrBadFormat, size)
	}
	custom := make([]byte, size)
	if _, err := io.ReadFull(r, custom); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}

	if m.custom != nil && size > 0 {
		if err := m.custom.LoadCustom(custom); err != nil {
			return fmt.Errorf("load custom state: %w", err)
		}
	}
	for _, e := range entries {
		if p := m.registry.Get(e.ID); p != nil {
			p.SetValue(e.Value)
		}
	}
	return nil
}
