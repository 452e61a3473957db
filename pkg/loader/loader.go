package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/logging"
	"github.com/spf13/afero"
)

// Definition is one block type read from a file.
type Definition struct {
	Path     string
	Settings *blocktype.Settings
}

// Supported reports whether path has a definition file extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadFile reads every definition in the file at path.
func LoadFile(fs afero.Fs, path string) ([]Definition, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, errors.Newf(errors.ErrDefinitionLoad, "unsupported definition file type %q", filepath.Ext(path)).
			WithDetail(errors.DetailPath, path)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDefinitionLoad, "failed to read definition file").
			WithDetail(errors.DetailPath, path)
	}

	docs, err := decode(path, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDefinitionParse, "failed to parse definition file").
			WithDetail(errors.DetailPath, path)
	}

	defs := make([]Definition, 0, len(docs))
	for i, doc := range docs {
		settings, err := toSettings(doc)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrDefinitionParse, "definition %d is invalid", i).
				WithDetail(errors.DetailPath, path)
		}
		defs = append(defs, Definition{Path: path, Settings: settings})
	}

	logger := logging.GetLogger("loader")
	logger.Debug().
		Str("path", path).
		Int("definitions", len(defs)).
		Msg("Loaded definition file")
	return defs, nil
}

// LoadPaths loads every given file and every supported file below every
// given directory. Directories are walked in lexical order.
func LoadPaths(fs afero.Fs, paths ...string) ([]Definition, error) {
	files, err := Expand(fs, paths...)
	if err != nil {
		return nil, err
	}

	var defs []Definition
	for _, file := range files {
		loaded, err := LoadFile(fs, file)
		if err != nil {
			return nil, err
		}
		defs = append(defs, loaded...)
	}
	return defs, nil
}

// Expand resolves paths to the definition files they name.
func Expand(fs afero.Fs, paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := fs.Stat(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrDefinitionLoad, "definition path is not readable").
				WithDetail(errors.DetailPath, p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = afero.Walk(fs, p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && Supported(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrDefinitionLoad, "failed to walk definition directory").
				WithDetail(errors.DetailPath, p)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
