// Package archive provides entry-enumerable reading of package archives.
//
// The install engine only needs (name, is-directory, content) per entry, so
// the boundary is format-agnostic. Supported formats: ZIP, tar, tar.gz and
// tar.zst, selected by content sniffing rather than file extension.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Entry is a single archive member.
type Entry struct {
	Name  string
	IsDir bool

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the entry's decompressed content. Directory
// entries yield an empty reader.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.open == nil {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return e.open()
}

// Reader enumerates the entries of an opened archive.
type Reader struct {
	entries []Entry
	closer  io.Closer
}

// Entries returns all archive members in archive order.
func (r *Reader) Entries() []Entry { return r.entries }

// Close releases the underlying archive handle.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Open opens the archive at path, detecting the format from its content.
func Open(path string) (*Reader, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting archive format of %s: %w", path, err)
	}

	switch {
	case mtype.Is("application/zip"):
		return openZip(path)
	case mtype.Is("application/gzip"):
		return openTar(path, decompressGzip)
	case mtype.Is("application/zstd"):
		return openTar(path, decompressZstd)
	case mtype.Is("application/x-tar"):
		return openTar(path, nil)
	default:
		return nil, fmt.Errorf("unsupported archive format %s for %s", mtype.String(), path)
	}
}

func openZip(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening zip %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		f := f
		entries = append(entries, Entry{
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir(),
			open:  func() (io.ReadCloser, error) { return f.Open() },
		})
	}
	return &Reader{entries: entries, closer: zr}, nil
}

type decompressor func(io.Reader) (io.Reader, func(), error)

func decompressGzip(r io.Reader) (io.Reader, func(), error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return gz, func() { gz.Close() }, nil
}

func decompressZstd(r io.Reader) (io.Reader, func(), error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return zr, zr.Close, nil
}

// openTar reads the whole tar stream up front. Tar has no central directory,
// and package archives are small enough that buffering file contents in
// memory is acceptable.
func openTar(path string, dec decompressor) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer f.Close()

	var src io.Reader = f
	if dec != nil {
		r, done, err := dec(f)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		defer done()
		src = r
	}

	tr := tar.NewReader(src)
	var entries []Entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar %s: %w", path, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			entries = append(entries, Entry{Name: hdr.Name, IsDir: true})
		case tar.TypeReg:
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("reading tar entry %s: %w", hdr.Name, err)
			}
			entries = append(entries, Entry{
				Name: hdr.Name,
				open: func() (io.ReadCloser, error) {
					return io.NopCloser(bytes.NewReader(data)), nil
				},
			})
		default:
			// Links and special files are not part of package archives.
		}
	}
	return &Reader{entries: entries}, nil
}

// Depth returns the number of path components of an entry name, ignoring a
// trailing slash on directory entries.
func Depth(name string) int {
	trimmed := strings.Trim(name, "/")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "/") + 1
}
