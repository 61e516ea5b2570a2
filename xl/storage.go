package xl

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	kflate "github.com/klauspost/compress/flate"
)

// Compression selects the deflate implementation used for the zip container.
// Both produce functionally identical archives; CompressionFast trades a
// slightly different bit stream for noticeably higher throughput.
type Compression int

const (
	// CompressionDeflate compresses with the standard library deflate.
	CompressionDeflate Compression = iota
	// CompressionFast compresses with the klauspost/compress deflate.
	CompressionFast
)

// Options are the packaging options, passed at construction time. The zero
// value is a valid default.
type Options struct {
	Compression Compression
}

// Storage is the interface for writing xlsx file parts (XML and media files).
// Implementations can write to ZIP archives or directory structures.
type Storage interface {
	WriteBlob(path string, blob []byte) error
}

// DirStorage writes xlsx file parts to a directory structure on disk. This is
// useful for debugging as it allows inspection of generated XML files.
type DirStorage struct {
	Dir string // Root directory path
}

// NewDirStorage creates a new directory-based storage that writes files to
// the specified directory. The directory is created if it doesn't exist.
func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{
		Dir: dir,
	}
}

// WriteBlob writes a file part to the directory structure, creating parent
// directories as needed.
func (ds *DirStorage) WriteBlob(path string, blob []byte) error {
	path = strings.TrimPrefix(path, "/")
	fn := filepath.Join(ds.Dir, path)
	err := os.MkdirAll(filepath.Dir(fn), 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(fn, blob, 0666)
}

// ZipStorage writes xlsx file parts to a ZIP archive, producing a standard
// .xlsx file. Part timestamps are pinned to a constant so that builds are
// reproducible.
type ZipStorage struct {
	z *zip.Writer
}

// zipEpoch is the fixed modification time stamped onto every archive entry.
// 1980-01-01 is the earliest date the zip format can represent.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// NewZipStorage creates a zip-based storage with default options writing to
// the given writer.
func NewZipStorage(out io.Writer) *ZipStorage {
	return NewZipStorageOptions(out, Options{})
}

// NewZipStorageOptions creates a zip-based storage with explicit options.
func NewZipStorageOptions(out io.Writer, opts Options) *ZipStorage {
	z := zip.NewWriter(out)
	if opts.Compression == CompressionFast {
		z.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return kflate.NewWriter(w, kflate.DefaultCompression)
		})
	}
	return &ZipStorage{z: z}
}

// WriteBlob writes a file part into the archive.
func (zs *ZipStorage) WriteBlob(path string, blob []byte) error {
	path = strings.TrimPrefix(path, "/")
	f, err := zs.z.CreateHeader(&zip.FileHeader{
		Name:     path,
		Method:   zip.Deflate,
		Modified: zipEpoch,
	})
	if err != nil {
		return err
	}
	_, err = f.Write(blob)
	return err
}

// Close writes the central directory and finalizes the archive. It must be
// called after all parts are written; skipping it on error leaves the output
// without a central directory, which no reader accepts as a valid document.
func (zs *ZipStorage) Close() error {
	return zs.z.Close()
}
