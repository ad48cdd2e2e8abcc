// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"strings"
	"time"
)

// Frame is one inbound video frame. It is transient: a session holds at
// most one waiting frame and drops it once scored.
type Frame struct {
	// Encoded is the base64 text as sent by the client. A data URL prefix
	// such as "data:image/jpeg;base64," is accepted.
	Encoded string

	// Image holds raw JPEG or PNG bytes. When set it takes precedence over
	// Encoded.
	Image []byte

	ReceivedAt time.Time
}

// Raster is a decoded frame: 3 bytes per pixel in R, G, B order, rows top
// to bottom with no padding.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// At returns the RGB triple at (x, y).
func (r *Raster) At(x, y int) (red, green, blue uint8) {
	i := (y*r.Width + x) * 3
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// DefaultMaxFramePixels bounds the declared size of a frame. Decoders size
// their buffers from the header, so a few hundred bytes can claim gigabytes.
const DefaultMaxFramePixels = 4096 * 4096

// DecodeFrame decodes a frame into an RGB raster, rejecting frames larger
// than DefaultMaxFramePixels.
func DecodeFrame(f Frame) (*Raster, error) {
	return decodeFrame(f, DefaultMaxFramePixels)
}

func decodeFrame(f Frame, maxPixels int) (*Raster, error) {
	if f.Image != nil {
		return decodeImage(f.Image, maxPixels)
	}
	payload, err := decodeBase64(f.Encoded)
	if err != nil {
		return nil, err
	}
	return decodeImage(payload, maxPixels)
}

// DecodeBase64Frame decodes base64 image text into an RGB raster.
func DecodeBase64Frame(text string) (*Raster, error) {
	return DecodeFrame(Frame{Encoded: text})
}

// DecodeImage decodes JPEG or PNG bytes into an RGB raster.
func DecodeImage(data []byte) (*Raster, error) {
	return decodeImage(data, DefaultMaxFramePixels)
}

func decodeImage(data []byte, maxPixels int) (*Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxFramePixels
	}

	hdr, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if hdr.Width <= 0 || hdr.Height <= 0 {
		return nil, fmt.Errorf("%w: %s image has no pixels", ErrDecode, format)
	}
	if int64(hdr.Width)*int64(hdr.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %s image is %dx%d, over the %d pixel limit",
			ErrDecode, format, hdr.Width, hdr.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s image has no pixels", ErrDecode, format)
	}
	return toRaster(img), nil
}

func decodeBase64(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "data:") {
		comma := strings.IndexByte(text, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: data URL without payload", ErrDecode)
		}
		text = text[comma+1:]
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, text)

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var firstErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(text)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, firstErr)
}

func toRaster(img image.Image) *Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	r := &Raster{Width: w, Height: h, Pix: make([]byte, w*h*3)}

	switch src := img.(type) {
	case *image.YCbCr:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				yi := src.YOffset(b.Min.X+x, b.Min.Y+y)
				ci := src.COffset(b.Min.X+x, b.Min.Y+y)
				red, green, blue := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
				i := (y*w + x) * 3
				r.Pix[i], r.Pix[i+1], r.Pix[i+2] = red, green, blue
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)]
				i := (y*w + x) * 3
				r.Pix[i], r.Pix[i+1], r.Pix[i+2] = v, v, v
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				cr, cg, cb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				i := (y*w + x) * 3
				r.Pix[i], r.Pix[i+1], r.Pix[i+2] = uint8(cr>>8), uint8(cg>>8), uint8(cb>>8)
			}
		}
	}
	return r
}
