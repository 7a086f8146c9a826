package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	versionLayout = "20060102150405"
	upSuffix      = ".up.sql"
	downSuffix    = ".down.sql"
)

// FilePair is an up/down migration file pair sharing one version
type FilePair struct {
	Version  string
	Base     string
	UpPath   string
	DownPath string
}

// Create writes an empty up/down migration pair into dir. The version prefix
// is the current timestamp, so files sort in creation order.
func Create(dir, name string) (*FilePair, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	now := time.Now()
	pair := &FilePair{
		Version: now.Format(versionLayout),
		Base:    now.Format(versionLayout) + "_" + slug,
	}
	pair.UpPath = filepath.Join(dir, pair.Base+upSuffix)
	pair.DownPath = filepath.Join(dir, pair.Base+downSuffix)

	header := fmt.Sprintf("-- %s\n-- created %s\n\n", name, now.Format(time.RFC3339))
	if err := os.WriteFile(pair.UpPath, []byte(header), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(pair.DownPath, []byte(header), 0o644); err != nil {
		os.Remove(pair.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return pair, nil
}

// List returns the base names of the migrations in dir, sorted by version. A
// missing directory lists as empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var bases []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), upSuffix) {
			continue
		}
		bases = append(bases, strings.TrimSuffix(entry.Name(), upSuffix))
	}
	sort.Strings(bases)
	return bases, nil
}

// slugify lowercases the name and collapses anything that is not a letter or
// digit into single underscores
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
