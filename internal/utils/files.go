package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// saveExtensions are the file extensions treated as save text
var saveExtensions = map[string]bool{
	".sav": true,
	".txt": true,
}

// saveBaseNames are the extensionless members of an unpacked save archive
var saveBaseNames = map[string]bool{
	"gamestate": true,
	"meta":      true,
}

// IsSaveFile reports whether a file name looks like save text
func IsSaveFile(name string) bool {
	base := filepath.Base(name)
	if saveBaseNames[strings.ToLower(base)] {
		return true
	}
	return saveExtensions[strings.ToLower(filepath.Ext(base))]
}

// FindSaveFiles recursively finds all save files in the specified directory
func FindSaveFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip directories
		if d.IsDir() {
			return nil
		}

		if IsSaveFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ExpandInputs resolves command-line arguments to save files. Files are kept
// as given whatever their name; directories are searched recursively.
// Duplicates are dropped and the first occurrence wins.
func ExpandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		found, err := FindSaveFiles(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", arg, err)
		}
		for _, f := range found {
			add(f)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no save files found in %s", strings.Join(args, ", "))
	}
	return files, nil
}
