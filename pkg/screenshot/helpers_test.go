package screenshot

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
)

var fill = color.RGBA{R: 0x20, G: 0x80, B: 0x40, A: 0xff}

// solidPNG returns a w x h PNG filled with fill.
func solidPNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// fakePage records calls and serves a fixed screenshot.
type fakePage struct {
	calls       []string
	shot        []byte
	navigateErr error
	zoomErr     error
	waitErr     error
	shotErr     error
	zoom        int
	selector    string
	hadDeadline bool
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.calls = append(p.calls, "navigate "+url)
	return p.navigateErr
}

func (p *fakePage) SetZoom(_ context.Context, percent int) error {
	p.calls = append(p.calls, "zoom")
	p.zoom = percent
	return p.zoomErr
}

func (p *fakePage) WaitReady(ctx context.Context, selector string) error {
	p.calls = append(p.calls, "wait")
	p.selector = selector
	_, p.hadDeadline = ctx.Deadline()
	return p.waitErr
}

func (p *fakePage) CaptureScreenshot(context.Context) ([]byte, error) {
	p.calls = append(p.calls, "screenshot")
	if p.shotErr != nil {
		return nil, p.shotErr
	}
	return p.shot, nil
}

var errBoom = errors.New("boom")
