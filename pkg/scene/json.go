package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lightrig/rigsnap/pkg/assembly"
	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/registry"
)

// WriteJSON encodes an assembly snapshot as indented JSON. The output can be
// re-imported with [ReadJSON].
func WriteJSON(snap assembly.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a snapshot to a JSON file at path.
func ExportJSON(snap assembly.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(snap, f)
}

// ReadJSON decodes a snapshot written by WriteJSON.
func ReadJSON(r io.Reader) (assembly.Snapshot, error) {
	var snap assembly.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return assembly.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode assembly")
	}
	return snap, nil
}

// ImportJSON reads a snapshot from the JSON file at path.
func ImportJSON(path string) (assembly.Snapshot, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return assembly.Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "assembly %s", path)
	}
	if err != nil {
		return assembly.Snapshot{}, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// Restore rebuilds a registry from snap. Occupancy is derived from the
// connections, so a snapshot whose occupancy disagrees with its connections
// is repaired rather than trusted.
func Restore(snap assembly.Snapshot) (*registry.Registry, error) {
	reg := registry.New()
	for i, c := range snap.Components {
		if c == nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "component %d is null", i)
		}
		if _, err := reg.Add(c); err != nil {
			return nil, fmt.Errorf("component %d (%s): %w", i, c.ID, err)
		}
	}
	for i, conn := range snap.Connections {
		if err := reg.Connect(conn); err != nil {
			return nil, fmt.Errorf("connection %d (%s): %w", i, conn, err)
		}
	}
	return reg, nil
}
