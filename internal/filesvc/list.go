// Package filesvc finds app scripts on disk.
package filesvc

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/roomkit/roomkit/internal/errdef"
)

const appExt = ".js"

type AppEntry struct {
	// Name is the path relative to the listed root.
	Name     string
	Path     string
	Modified time.Time
}

// ListApps returns the .js apps under root, optionally recursing into
// subdirectories while skipping hidden folders and node_modules. A missing
// root yields no apps.
func ListApps(root string, recursive bool) ([]AppEntry, error) {
	var entries []AppEntry
	add := func(rel, path string, d fs.DirEntry) {
		e := AppEntry{Name: rel, Path: path}
		if info, err := d.Info(); err == nil {
			e.Modified = info.ModTime()
		}
		entries = append(entries, e)
	}

	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !isApp(d.Name()) {
				return nil
			}
			rel := d.Name()
			if r, relErr := filepath.Rel(root, path); relErr == nil {
				rel = filepath.ToSlash(r)
			}
			add(rel, path, d)
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeIO, err, "list apps in %s", root)
		}
	} else {
		dirEntries, err := os.ReadDir(root)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeIO, err, "list apps in %s", root)
		}
		for _, d := range dirEntries {
			if d.IsDir() || !isApp(d.Name()) {
				continue
			}
			add(d.Name(), filepath.Join(root, d.Name()), d)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func isApp(name string) bool {
	return strings.EqualFold(filepath.Ext(name), appExt) && !strings.HasPrefix(name, ".")
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
