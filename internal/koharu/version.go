package koharu

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// UnknownVersion is reported when package.json is missing or has no version.
const UnknownVersion = "unknown"

// PackageVersion extracts the "version" field from package.json contents.
func PackageVersion(data []byte) string {
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return UnknownVersion
	}
	if v := strings.TrimSpace(pkg.Version); v != "" {
		return v
	}
	return UnknownVersion
}

// ProjectVersion reads the template version from the project's package.json.
func ProjectVersion(projectRoot string) string {
	data, err := os.ReadFile(filepath.Join(projectRoot, "package.json"))
	if err != nil {
		return UnknownVersion
	}
	return PackageVersion(data)
}
