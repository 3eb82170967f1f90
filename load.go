package latentset

import (
	"path/filepath"
	"strings"

	"github.com/hupe1980/latentset/internal/fs"
)

// LoadPrompts reads one prompt per line. Lines are trimmed and empty lines skipped.
func LoadPrompts(path string) ([]string, error) {
	return loadLines(fs.Default, path)
}

// LoadVideos reads one video path per line and joins each with root.
// Absolute lines are kept as they are.
func LoadVideos(root, path string) ([]string, error) {
	return loadVideos(fs.Default, root, path)
}

func loadVideos(fsys fs.FileSystem, root, path string) ([]string, error) {
	lines, err := loadLines(fsys, path)
	if err != nil {
		return nil, err
	}
	for i, l := range lines {
		lines[i] = resolve(root, l)
	}
	return lines, nil
}

func loadLines(fsys fs.FileSystem, path string) ([]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
