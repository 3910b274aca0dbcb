package romloader

import (
	"archive/zip"
	"fmt"
)

// extractFromZIP extracts the first cartridge image from a ZIP archive
func extractFromZIP(path string) ([]byte, string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}
	defer zr.Close()

	return firstROM(listEntries(zr.File, func(f *zip.File) archiveEntry {
		info := f.FileInfo()
		return archiveEntry{name: f.Name, skip: info.IsDir(), size: info.Size(), open: f.Open}
	}))
}
