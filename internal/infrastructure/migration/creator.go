package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// versionWidth is the zero-padded width of sequential migration versions
const versionWidth = 6

// Dialects lists every dialect that gets a migration pair on create
var Dialects = []string{DialectPostgres, DialectMySQL}

// MigrationFile describes one migration version
type MigrationFile struct {
	Version uint
	Name    string
	// Paths maps each dialect to its up file
	Paths map[string]string
}

// CreateMigration writes an empty up/down pair for every dialect, numbered
// one past the highest existing version
func CreateMigration(migrationsPath, name string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	existing, err := ListMigrations(migrationsPath)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	mf := &MigrationFile{Version: next, Name: slug, Paths: make(map[string]string)}
	base := fmt.Sprintf("%0*d_%s", versionWidth, next, slug)

	var written []string
	for _, dialect := range Dialects {
		dir := SourceDir(migrationsPath, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		for _, direction := range []string{"up", "down"} {
			path := filepath.Join(dir, base+"."+direction+".sql")
			header := fmt.Sprintf("-- %s (%s, %s)\n\n", slug, dialect, direction)
			if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
				for _, p := range written {
					_ = os.Remove(p)
				}
				return nil, fmt.Errorf("failed to write %s: %w", path, err)
			}
			written = append(written, path)
			if direction == "up" {
				mf.Paths[dialect] = path
			}
		}
	}
	return mf, nil
}

// sanitizeName lowercases a name and joins its words with underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the versions found in any dialect directory,
// ordered by version. A missing directory yields an empty list.
func ListMigrations(migrationsPath string) ([]MigrationFile, error) {
	byVersion := make(map[uint]*MigrationFile)
	for _, dialect := range Dialects {
		dir := SourceDir(migrationsPath, dialect)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", dir, err)
		}
		for _, entry := range entries {
			base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
			if entry.IsDir() || !ok {
				continue
			}
			num, slug, ok := strings.Cut(base, "_")
			if !ok {
				continue
			}
			v, err := strconv.ParseUint(num, 10, 64)
			if err != nil {
				continue
			}
			mf, seen := byVersion[uint(v)]
			if !seen {
				mf = &MigrationFile{Version: uint(v), Name: slug, Paths: make(map[string]string)}
				byVersion[uint(v)] = mf
			}
			mf.Paths[dialect] = filepath.Join(dir, entry.Name())
		}
	}

	out := make([]MigrationFile, 0, len(byVersion))
	for _, mf := range byVersion {
		out = append(out, *mf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
