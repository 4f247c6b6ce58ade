package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/font/sfnt"

	"github.com/matzehuels/xkcdify/pkg/errors"
)

// FamilyFromBytes returns the family name recorded in a TrueType or OpenType
// font.
func FamilyFromBytes(data []byte) (string, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFont, err, "parse font")
	}
	var buf sfnt.Buffer
	for _, id := range []sfnt.NameID{sfnt.NameIDTypographicFamily, sfnt.NameIDFamily} {
		name, err := f.Name(&buf, id)
		if err == nil && name != "" {
			return name, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFont, "font has no family name")
}

// FamilyFromFile reads the family name of a .ttf or .otf file.
func FamilyFromFile(path string) (string, error) {
	if err := errors.ValidateFontPath(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeNotFound, err, "font file %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeInvalidFont, err, "read %s", path)
	}
	family, err := FamilyFromBytes(data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFont, err, "%s", path)
	}
	return family, nil
}

// Face is a font file found by [ScanDir].
type Face struct {
	Family string `json:"family"`
	Path   string `json:"path"`
}

// ScanDir walks dir for font files and returns their families sorted by
// family name, then path. Files that fail to parse are skipped.
func ScanDir(dir string) ([]Face, error) {
	var faces []Face
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || errors.ValidateFontPath(path) != nil {
			return nil
		}
		family, err := FamilyFromFile(path)
		if err != nil {
			return nil
		}
		faces = append(faces, Face{Family: family, Path: path})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "scan %s", dir)
	}
	sort.Slice(faces, func(i, j int) bool {
		if faces[i].Family != faces[j].Family {
			return faces[i].Family < faces[j].Family
		}
		return faces[i].Path < faces[j].Path
	})
	return faces, nil
}
