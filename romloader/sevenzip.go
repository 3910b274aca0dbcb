package romloader

import (
	"fmt"

	"github.com/bodgit/sevenzip"
)

// extractFrom7z extracts the first cartridge image from a 7z archive
func extractFrom7z(path string) ([]byte, string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}
	defer r.Close()

	return firstROM(listEntries(r.File, func(f *sevenzip.File) archiveEntry {
		info := f.FileInfo()
		return archiveEntry{name: f.Name, skip: info.IsDir(), size: info.Size(), open: f.Open}
	}))
}
