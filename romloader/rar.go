package romloader

import (
	"fmt"

	"github.com/nwaples/rardecode/v2"
)

// extractFromRAR extracts the first cartridge image from a RAR archive.
// Members are read in stream order.
func extractFromRAR(path string) ([]byte, string, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open rar: %w", err)
	}
	defer r.Close()

	return firstROM(func() (archiveEntry, error) {
		h, err := r.Next()
		if err != nil {
			return archiveEntry{}, err
		}
		size := h.UnPackedSize
		if h.UnKnownSize {
			size = -1
		}
		return archiveEntry{name: h.Name, skip: h.IsDir, size: size, open: streamOpener(r)}, nil
	})
}
