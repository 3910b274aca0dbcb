package romloader

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractFromGzip handles both a single gzipped image (game.gb.gz) and a
// gzipped tar archive (.tar.gz, .tgz).
func extractFromGzip(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gz.Close()

	br := bufio.NewReader(gz)
	if isTar(br, path) {
		return extractFromTar(br)
	}

	data, err := limitedRead(br)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read gzip: %w", err)
	}

	name := gz.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return data, filepath.Base(name), nil
}

// isTar reports whether the decompressed stream is a tar archive, by name
// or by the "ustar" magic at offset 257.
func isTar(br *bufio.Reader, path string) bool {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return true
	}
	header, err := br.Peek(262)
	if err != nil {
		return false
	}
	return string(header[257:262]) == "ustar"
}

func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	return firstROM(func() (archiveEntry, error) {
		hdr, err := tr.Next()
		if err != nil {
			return archiveEntry{}, err
		}
		return archiveEntry{
			name: hdr.Name,
			skip: hdr.Typeflag != tar.TypeReg,
			size: hdr.Size,
			open: streamOpener(tr),
		}, nil
	})
}
