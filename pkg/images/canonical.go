// Package images extracts raster placements from PDF pages and
// groups repeated artwork by content, so a logo stamped on every page
// counts once.
package images

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/minio/highwayhash"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var hashKey = []byte("pdftriage-raster-content-key-001")

// Canonicalize reduces a raster payload to a representation where two
// encodings of the same pixels compare equal: decoded pixels are
// redrawn into NRGBA and prefixed with the dimensions. Payloads no
// registered codec can decode pass through unchanged, so byte-equal
// duplicates still group.
func Canonicalize(payload []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return payload
	}

	bounds := img.Bounds()
	canonical := image.NewNRGBA(bounds)
	draw.Draw(canonical, bounds, img, bounds.Min, draw.Src)

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int64(bounds.Dx()))
	binary.Write(&buf, binary.BigEndian, int64(bounds.Dy()))
	buf.Write(canonical.Pix)
	return buf.Bytes()
}

// ContentHash returns the 64-bit content hash of a canonicalized
// payload.
func ContentHash(canonical []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(canonical); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
