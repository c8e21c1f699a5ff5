package meta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// SidecarName is the file written next to exported frame sequences.
const SidecarName = "frametiler.json"

// Sidecar persists run metadata for storage formats that cannot carry
// frame properties. Unit holds the run's common tag with indices
// zeroed; per-frame indices are recovered from file order on read.
type Sidecar struct {
	Version int      `json:"version"`
	Unit    *Tag     `json:"unit,omitempty"`
	Pad     *PadTag  `json:"pad,omitempty"`
	TPad    *TPadTag `json:"tpad,omitempty"`
}

// WriteSidecar stores s at path, overwriting any previous sidecar.
func WriteSidecar(path string, s Sidecar) error {
	s.Version = TagVersion
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("meta: encode sidecar: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("meta: write sidecar: %w", err)
	}
	return nil
}

// ReadSidecar loads the sidecar at path. A missing file returns ok
// false with no error, so callers can treat sidecars as optional.
func ReadSidecar(path string) (Sidecar, bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Sidecar{}, false, nil
	}
	if err != nil {
		return Sidecar{}, false, fmt.Errorf("meta: read sidecar: %w", err)
	}
	var s Sidecar
	if err := json.Unmarshal(b, &s); err != nil {
		return Sidecar{}, true, fmt.Errorf("meta: %w: sidecar: %v", ErrInvalidTag, err)
	}
	if s.Version != TagVersion {
		return Sidecar{}, true, fmt.Errorf("meta: %w: sidecar version %d", ErrInvalidTag, s.Version)
	}
	return s, true, nil
}
