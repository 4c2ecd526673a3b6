package csvfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceFile is a CSV found in the data directory.
type SourceFile struct {
	Name string
	Path string
	Size int64
}

// SizeMB returns the file size in mebibytes.
func (f SourceFile) SizeMB() float64 {
	return float64(f.Size) / 1024 / 1024
}

// List returns the .csv files directly under dir, sorted by name.
func List(dir string) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var files []SourceFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, SourceFile{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Match returns the first file whose upper-cased name contains pattern.
func Match(files []SourceFile, pattern string) (SourceFile, bool) {
	pattern = strings.ToUpper(pattern)
	for _, f := range files {
		if strings.Contains(strings.ToUpper(f.Name), pattern) {
			return f, true
		}
	}
	return SourceFile{}, false
}
