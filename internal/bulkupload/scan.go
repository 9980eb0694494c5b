package bulkupload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageTypes maps the accepted extensions to their MIME types.
var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// MimeType returns the MIME type for name's extension, or "" when the
// extension is not an accepted image type.
func MimeType(name string) string {
	return imageTypes[strings.ToLower(filepath.Ext(name))]
}

// ScanFolder lists the image files directly inside dir, sorted by name.
// Subdirectories and other files are ignored.
func ScanFolder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || MimeType(e.Name()) == "" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
