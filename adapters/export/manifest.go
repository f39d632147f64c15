package export

import (
	"fmt"
	"os"
	"path/filepath"

	"asepower/domain/run"
)

// WriteManifest stores m as JSON at run.ManifestPath(m.Output).
func WriteManifest(m *run.Manifest) (string, error) {
	data, err := m.Marshal()
	if err != nil {
		return "", err
	}
	path := run.ManifestPath(m.Output)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	tmp := path + ".temp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to move manifest into %s: %w", path, err)
	}
	return path, nil
}
