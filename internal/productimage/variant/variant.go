// Package variant re-encodes uploaded images and derives the fixed-size
// renditions shown on the storefront.
package variant

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Spec is one derived rendition, fit inside a Size x Size square.
type Spec struct {
	Name    string
	Size    int
	Quality int
}

var (
	Thumbnail = Spec{Name: "thumbnail", Size: 150, Quality: 80}
	Medium    = Spec{Name: "medium", Size: 400, Quality: 85}
	Large     = Spec{Name: "large", Size: 800, Quality: 90}

	Specs = []Spec{Thumbnail, Medium, Large}
)

const (
	OriginalQuality = 85
	HeroQuality     = 90

	maxPixels = 40_000_000
)

var (
	ErrUnsupported = errors.New("unsupported_image")
	ErrTooLarge    = errors.New("image_too_large")
)

// Set is an uploaded image re-encoded as JPEG plus its renditions keyed by
// Spec.Name.
type Set struct {
	Original []byte
	Variants map[string][]byte
	Width    int
	Height   int
}

// Decode reads JPEG, PNG, GIF or WebP data.
func Decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, ErrTooLarge
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return img, nil
}

// Process re-encodes data at quality and renders every Spec.
func Process(data []byte, quality int) (*Set, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	original, err := EncodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}

	set := &Set{
		Original: original,
		Variants: make(map[string][]byte, len(Specs)),
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}
	for _, spec := range Specs {
		out, err := EncodeJPEG(Fit(img, spec.Size), spec.Quality)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", spec.Name, err)
		}
		set.Variants[spec.Name] = out
	}
	return set, nil
}

// Reencode decodes data and writes it back as JPEG at quality.
func Reencode(data []byte, quality int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(img, quality)
}

// Fit scales img to fit inside a size x size box, preserving aspect ratio.
// Images already inside the box are returned unchanged.
func Fit(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return img
	}

	nw, nh := size, size
	if w >= h {
		nh = max(1, h*size/w)
	} else {
		nw = max(1, w*size/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodeJPEG flattens transparency onto white and encodes at quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
