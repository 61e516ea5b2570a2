package xl

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
)

// Image is a picture blob to be embedded into a cell. Only png and jpeg
// images are supported.
type Image struct {
	Extension string // ".png", ".jpg" or ".jpeg"
	Blob      []byte
}

// BlobHash produces a stable content hash of a media blob, rendered as a
// UUID. Identical blobs map to one media part in the package.
func BlobHash(blob []byte) uuid.UUID {
	h := fnv.New128()
	h.Write(blob)
	uid, _ := uuid.FromBytes(h.Sum([]byte{}))
	return uid
}

// mediaName returns the content-addressed file name of an image together with
// the content-type extension it registers.
func mediaName(img *Image) (name, ext string, err error) {
	if img == nil || len(img.Blob) == 0 {
		return "", "", errors.New("empty picture data")
	}
	ext = strings.ToLower(img.Extension)
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	if ext != ".jpeg" && ext != ".png" {
		return "", "", fmt.Errorf("unsupported image extension %s", img.Extension)
	}
	return fmt.Sprintf("%.16x%s", BlobHash(img.Blob), ext), ext, nil
}
