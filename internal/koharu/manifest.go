package koharu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ManifestName is the member at the archive root describing the snapshot.
	ManifestName = "manifest.json"

	// ManifestLabel is written into Manifest.Name for archives this tool creates.
	ManifestLabel = "astro-koharu-backup"
)

// BackupType distinguishes basic snapshots (required items only) from full ones.
type BackupType string

const (
	BackupBasic BackupType = "basic"
	BackupFull  BackupType = "full"
)

// TypeFor returns the snapshot type produced by a backup run.
func TypeFor(full bool) BackupType {
	if full {
		return BackupFull
	}
	return BackupBasic
}

// Manifest is the JSON document stored as manifest.json inside every archive.
// Files maps each attempted archive path to whether it was copied.
type Manifest struct {
	Name      string          `json:"name"`
	Version   string          `json:"version"`
	Type      BackupType      `json:"type"`
	Timestamp string          `json:"timestamp"`
	CreatedAt string          `json:"created_at"`
	Files     map[string]bool `json:"files"`
}

// EncodeManifest renders m as indented JSON.
func EncodeManifest(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeManifest parses a manifest. Missing files maps decode as empty maps.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if m.Files == nil {
		m.Files = map[string]bool{}
	}
	return &m, nil
}

// WriteManifest writes m as manifest.json into dir.
func WriteManifest(dir string, m *Manifest) error {
	data, err := EncodeManifest(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
