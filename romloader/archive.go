package romloader

import (
	"fmt"
	"io"
	"path/filepath"
)

// archiveEntry is one member of a multi-file archive. size is the
// uncompressed size, or -1 when the format does not record it.
type archiveEntry struct {
	name string
	skip bool // directories, links and other non-file members
	size int64
	open func() (io.ReadCloser, error)
}

// entryIterator yields archive members in order and io.EOF after the last.
type entryIterator func() (archiveEntry, error)

// firstROM returns the first cartridge image among the members of an
// archive, with its base name.
func firstROM(next entryIterator) ([]byte, string, error) {
	for {
		e, err := next()
		if err == io.EOF {
			return nil, "", ErrNoROMFile
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read archive entry: %w", err)
		}
		if e.skip || !isROMFile(e.name) {
			continue
		}
		if e.size > maxROMSize {
			return nil, "", fmt.Errorf("%s: %w", e.name, ErrFileTooLarge)
		}

		rc, err := e.open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", e.name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", e.name, err)
		}
		return data, filepath.Base(e.name), nil
	}
}

// listEntries walks an archive whose members are known up front.
func listEntries[F any](files []F, entry func(F) archiveEntry) entryIterator {
	i := 0
	return func() (archiveEntry, error) {
		if i == len(files) {
			return archiveEntry{}, io.EOF
		}
		i++
		return entry(files[i-1]), nil
	}
}

// streamOpener hands out the current member of a sequential archive
// reader, which the caller must not close.
func streamOpener(r io.Reader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	}
}
