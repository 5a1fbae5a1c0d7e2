package glyphreel

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ProfileStore keeps brightness profiles on disk, one directory per font
// name and one file per cell size and font fingerprint:
//
//	<root>/<font_name>/<w>x<h>-<fingerprint prefix>.json
type ProfileStore struct {
	Root string
}

// NewProfileStore returns a store rooted at dir. The directory is created
// on the first Save.
func NewProfileStore(dir string) *ProfileStore {
	return &ProfileStore{Root: dir}
}

// fingerprintPrefix is the number of hex digits of the font fingerprint
// kept in profile file names.
const fingerprintPrefix = 16

// Path returns the file a profile for the font and cell size lives in.
func (s *ProfileStore) Path(id FontIdentity, cellWidth, cellHeight int) string {
	file := fmt.Sprintf("%dx%d", cellWidth, cellHeight)
	if fp := id.Fingerprint; fp != "" {
		if len(fp) > fingerprintPrefix {
			fp = fp[:fingerprintPrefix]
		}
		file += "-" + fp
	}
	return filepath.Join(s.Root, storeName(id.Name), file+".json")
}

// storeName turns a font family name into a directory name.
func storeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r == '-' || r == '_' || r == '.':
			return r
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		}
		return '_'
	}, name)
}

// Exists reports whether a non-empty profile file is present.
func (s *ProfileStore) Exists(id FontIdentity, cellWidth, cellHeight int) bool {
	fi, err := os.Stat(s.Path(id, cellWidth, cellHeight))
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// Load reads the profile for the font and cell size.
func (s *ProfileStore) Load(id FontIdentity, cellWidth, cellHeight int) (*FontProfile, error) {
	path := s.Path(id, cellWidth, cellHeight)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileIO, err)
	}
	entries, err := decodeProfile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &FontProfile{
		Font:       id,
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		Entries:    entries,
	}, nil
}

// Save writes the profile, creating directories as needed. The file is
// written to a temporary name and renamed into place, so an interrupted
// save never leaves a truncated profile behind.
func (s *ProfileStore) Save(p *FontProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	path := s.Path(p.Font, p.CellWidth, p.CellHeight)

	var buf bytes.Buffer
	if err := encodeProfile(&buf, p); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProfileIO, path, err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrProfileIO, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".profile-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
