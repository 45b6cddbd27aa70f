// Package filestore manages the local directory holding uploaded audio
// bytes. Filenames are sanitized before use and collisions are resolved
// with numeric suffixes; each probe claims its path atomically so two
// concurrent uploads cannot both win the same name.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Store is the file store rooted at a single directory.
type Store struct {
	root   string
	logger *logrus.Logger
}

// New creates the store, creating the root directory if absent.
func New(root string, logger *logrus.Logger) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Store{root: abs, logger: logger}, nil
}

// Root returns the absolute root directory of the store.
func (s *Store) Root() string {
	return s.root
}

// SanitizeFilename strips path components and unsafe characters from an
// uploaded filename. The result is always safe to join under the root;
// an empty result means nothing usable survived.
func SanitizeFilename(name string) string {
	// Strip any directory components, both separators
	name = name[strings.LastIndexByte(name, '/')+1:]
	name = name[strings.LastIndexByte(name, '\\')+1:]

	ext := filepath.Ext(name)
	base := cleanComponent(strings.TrimSuffix(name, ext))
	if base == "" {
		return ""
	}
	if ext = cleanComponent(ext); ext != "" {
		return base + "." + ext
	}
	return base
}

// cleanComponent keeps alphanumerics, dots, dashes and underscores,
// converts spaces to underscores, and trims leading/trailing dots.
func cleanComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// Save writes the reader's bytes under the sanitized name, appending _1,
// _2, ... before the extension until a free name is found. Each candidate
// is claimed with O_CREATE|O_EXCL, so the probe is race-free. Returns the
// filename actually used.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	safe := SanitizeFilename(name)
	if safe == "" {
		safe = "uploaded_file" + strings.ToLower(filepath.Ext(name))
	}

	ext := filepath.Ext(safe)
	base := strings.TrimSuffix(safe, ext)

	filename := safe
	var file *os.File
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(filepath.Join(s.root, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			file = f
			break
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create file: %w", err)
		}
		filename = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		os.Remove(file.Name()) // don't leave a truncated file behind
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"filename": filename,
		"original": name,
	}).Debug("Stored uploaded file")

	return filename, nil
}

// Path resolves filename to an absolute path inside the store. Stored
// names are single path components, so anything carrying a separator or
// naming a directory is rejected outright rather than cleaned into place.
func (s *Store) Path(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsRune(filename, '/') || strings.ContainsRune(filename, '\\') {
		return "", fmt.Errorf("filename escapes file store root")
	}

	return filepath.Join(s.root, filename), nil
}

// Exists reports whether filename is present in the store.
func (s *Store) Exists(filename string) bool {
	path, err := s.Path(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
