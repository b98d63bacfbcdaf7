// Package decode turns arbitrary image bytes into the fixed-size RGB planes
// the Haar signature builder expects, resizing with the same bilinear
// scaler the pack's image tooling uses.
package decode

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/tomas/iqdb/internal/haar"
)

// Planes holds separate R, G, B byte planes, each haar.Pixels*haar.Pixels
// long in row-major order — the shape haar.FromRGB expects.
type Planes struct {
	R, G, B []byte
}

// FromBytes decodes an arbitrary image file (JPEG, PNG, GIF or BMP) and
// resizes it down to haar.Pixels x haar.Pixels, discarding aspect ratio the
// same way the reference implementation does: the signature is computed
// over the squashed thumbnail, not a cropped one.
func FromBytes(data []byte) (Planes, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Planes{}, fmt.Errorf("decode: %w", err)
	}
	return FromImage(img), nil
}

// FromImage resizes an already-decoded image to the fixed signature
// dimensions and splits it into planes.
func FromImage(img image.Image) Planes {
	dst := image.NewRGBA(image.Rect(0, 0, haar.Pixels, haar.Pixels))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	n := haar.Pixels * haar.Pixels
	p := Planes{
		R: make([]byte, n),
		G: make([]byte, n),
		B: make([]byte, n),
	}
	for y := 0; y < haar.Pixels; y++ {
		row := y * haar.Pixels
		for x := 0; x < haar.Pixels; x++ {
			off := dst.PixOffset(x, y)
			i := row + x
			p.R[i] = dst.Pix[off]
			p.G[i] = dst.Pix[off+1]
			p.B[i] = dst.Pix[off+2]
		}
	}
	return p
}

// Signature decodes and resizes raw image bytes and computes its Haar
// signature in one step.
func Signature(data []byte) (haar.Signature, error) {
	planes, err := FromBytes(data)
	if err != nil {
		return haar.Signature{}, err
	}
	return haar.FromRGB(planes.R, planes.G, planes.B), nil
}

// PlanesFromChannels validates and wraps caller-supplied raw channel
// arrays, the alternate input path described for direct RGB submission.
func PlanesFromChannels(r, g, b []byte) (Planes, error) {
	n := haar.Pixels * haar.Pixels
	if len(r) != n || len(g) != n || len(b) != n {
		return Planes{}, fmt.Errorf("decode: channel arrays must have length %d, got r=%d g=%d b=%d", n, len(r), len(g), len(b))
	}
	return Planes{R: r, G: g, B: b}, nil
}
