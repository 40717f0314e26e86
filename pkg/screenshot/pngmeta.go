package screenshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"math"
)

const (
	pngSignatureLen = 8
	// length + type + 13 bytes of header + crc
	ihdrChunkLen  = 4 + 4 + 13 + 4
	inchPerMeter  = 1 / 0.0254
	physUnitMeter = 1
)

// EncodePNG writes img as PNG with a pHYs chunk declaring dpi on both axes.
// image/png has no option for physical dimensions, so the chunk is spliced
// in directly after IHDR.
func EncodePNG(w io.Writer, img image.Image, dpi int) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	data := buf.Bytes()

	end := pngSignatureLen + ihdrChunkLen
	if len(data) < end || string(data[pngSignatureLen+4:pngSignatureLen+8]) != "IHDR" {
		return ErrMalformedPNG
	}

	for _, part := range [][]byte{data[:end], physChunk(dpi), data[end:]} {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}
	return nil
}

func physChunk(dpi int) []byte {
	ppm := uint32(math.Round(float64(dpi) * inchPerMeter))

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:4], 9)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], ppm)
	binary.BigEndian.PutUint32(chunk[12:16], ppm)
	chunk[16] = physUnitMeter
	binary.BigEndian.PutUint32(chunk[17:21], crc32.ChecksumIEEE(chunk[4:17]))
	return chunk
}

// ReadDPI returns the DPI declared by the pHYs chunk of a PNG stream.
// ok is false when the image carries no metre-based pHYs chunk.
func ReadDPI(data []byte) (x, y int, ok bool, err error) {
	if len(data) < pngSignatureLen || !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		return 0, 0, false, ErrMalformedPNG
	}

	rest := data[pngSignatureLen:]
	for len(rest) >= 12 {
		n := int(binary.BigEndian.Uint32(rest[0:4]))
		typ := string(rest[4:8])
		if len(rest) < 12+n {
			return 0, 0, false, fmt.Errorf("%w: truncated %s chunk", ErrMalformedPNG, typ)
		}
		body := rest[8 : 8+n]
		switch typ {
		case "pHYs":
			if n != 9 || body[8] != physUnitMeter {
				return 0, 0, false, nil
			}
			px := float64(binary.BigEndian.Uint32(body[0:4])) / inchPerMeter
			py := float64(binary.BigEndian.Uint32(body[4:8])) / inchPerMeter
			return int(math.Round(px)), int(math.Round(py)), true, nil
		case "IDAT", "IEND":
			return 0, 0, false, nil
		}
		rest = rest[12+n:]
	}
	return 0, 0, false, nil
}
