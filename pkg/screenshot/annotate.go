package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"os"

	"github.com/waftester/dorkshot/pkg/defaults"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Annotator stamps a header band with a line of text onto screenshots.
type Annotator struct {
	face       font.Face
	bandHeight int
	textColor  color.Color
	origin     image.Point
	dpi        int
}

// Annotated describes an annotated image written to disk.
type Annotated struct {
	Width  int
	Height int
	Data   []byte
}

// LoadFace loads a TrueType/OpenType face at size pixels. An empty path
// selects the embedded Go Mono Bold face. A path that does not exist
// returns ErrMissingFontAsset.
func LoadFace(path string, size float64) (font.Face, error) {
	data := gomonobold.TTF
	if path != "" {
		b, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFontAsset, path)
		}
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	// At 72 DPI one point is one pixel.
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return face, nil
}

// NewAnnotator loads the configured font and returns an annotator.
func NewAnnotator(config Config) (*Annotator, error) {
	config = config.withDefaults()
	face, err := LoadFace(config.FontPath, config.FontSize)
	if err != nil {
		return nil, err
	}
	return &Annotator{
		face:       face,
		bandHeight: config.BandHeight,
		textColor:  config.TextColor,
		origin:     image.Pt(defaults.TextX, defaults.TextY),
		dpi:        config.DPI,
	}, nil
}

// BandHeight returns the height added on top of every image.
func (a *Annotator) BandHeight() int {
	return a.bandHeight
}

// Annotate returns a copy of src with a black band of BandHeight pixels
// above it and text drawn with its top-left at the annotator origin.
func (a *Annotator) Annotate(src image.Image, text string) *image.RGBA {
	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()+a.bandHeight))

	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, a.bandHeight, sb.Dx(), sb.Dy()+a.bandHeight), src, sb.Min, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(a.textColor),
		Face: a.face,
		Dot: fixed.Point26_6{
			X: fixed.I(a.origin.X),
			Y: fixed.I(a.origin.Y) + a.face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
	return dst
}

// AnnotateFile re-opens the PNG at path, annotates it and overwrites it
// with the configured DPI.
func (a *Annotator) AnnotateFile(path, text string) (Annotated, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Annotated{}, fmt.Errorf("reopen screenshot: %w", err)
	}
	src, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return Annotated{}, fmt.Errorf("decode screenshot: %w", err)
	}

	img := a.Annotate(src, text)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, img, a.dpi); err != nil {
		return Annotated{}, fmt.Errorf("encode screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), defaults.FilePerm); err != nil {
		return Annotated{}, fmt.Errorf("write screenshot: %w", err)
	}

	b := img.Bounds()
	return Annotated{Width: b.Dx(), Height: b.Dy(), Data: buf.Bytes()}, nil
}
