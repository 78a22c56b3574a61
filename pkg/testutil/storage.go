package testutil

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Storage areas readable through StorageSnapshot.
const (
	LocalStorage   = "localStorage"
	SessionStorage = "sessionStorage"
)

// snapshotJS serializes one storage area. Values are the raw strings the
// application stored, JSON documents included.
const snapshotJS = `(area) => JSON.stringify(Object.fromEntries(Object.entries(window[area])))`

// StorageSnapshot returns every key/value pair of a storage area of the
// current origin.
func (s *Session) StorageSnapshot(area string) (map[string]string, error) {
	if area != LocalStorage && area != SessionStorage {
		return nil, fmt.Errorf("unknown storage area %q", area)
	}
	result, err := s.Eval(snapshotJS, area)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", area, err)
	}
	return DecodeStorage(result.Value.Str())
}

// LocalStorage returns the current origin's localStorage contents.
func (s *Session) LocalStorage() (map[string]string, error) {
	return s.StorageSnapshot(LocalStorage)
}

// SessionStorage returns the current origin's sessionStorage contents.
func (s *Session) SessionStorage() (map[string]string, error) {
	return s.StorageSnapshot(SessionStorage)
}

// ClearStorage empties localStorage and sessionStorage of the current origin.
// Pages without storage access (about:blank, opaque origins) are ignored.
func (s *Session) ClearStorage() error {
	_, err := s.Eval(`() => {
		try {
			window.localStorage.clear();
			window.sessionStorage.clear();
		} catch (e) {}
	}`)
	return err
}

// DecodeStorage parses the JSON object produced by the snapshot script.
func DecodeStorage(raw string) (map[string]string, error) {
	if raw == "" {
		return map[string]string{}, nil
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode storage snapshot: %w", err)
	}
	return out, nil
}
