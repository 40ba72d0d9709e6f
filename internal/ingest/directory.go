package ingest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meeplemtl/invoice-scanner/internal/common"
)

// ListPDFs walks root and returns the PDF files found, sorted by path so
// runs process documents in a stable order. Hidden files and directories
// are skipped.
func ListPDFs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if isPDF(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, common.WrapError(err, "walk invoice directory")
	}
	sort.Strings(paths)
	return paths, nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
