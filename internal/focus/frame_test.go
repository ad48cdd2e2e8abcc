// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package focus

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"image/png"
	"runtime"
	"testing"
)

func TestDecodeFrameJPEGRoundTrip(t *testing.T) {
	t.Parallel()

	src := testImage(40, 30)
	raster, err := DecodeBase64Frame(base64.StdEncoding.EncodeToString(encodeJPEG(t, src)))
	if err != nil {
		t.Fatalf("DecodeBase64Frame: %v", err)
	}
	if raster.Width != 40 || raster.Height != 30 {
		t.Fatalf("size = %dx%d, want 40x30", raster.Width, raster.Height)
	}
	if len(raster.Pix) != 40*30*3 {
		t.Fatalf("len(Pix) = %d, want %d", len(raster.Pix), 40*30*3)
	}

	// JPEG is lossy; compare mean absolute error per channel.
	var sum, n float64
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			want := src.RGBAAt(x, y)
			r, g, b := raster.At(x, y)
			sum += absDiff(r, want.R) + absDiff(g, want.G) + absDiff(b, want.B)
			n += 3
		}
	}
	if mae := sum / n; mae > 8 {
		t.Errorf("mean absolute error = %.2f, want <= 8", mae)
	}
}

func absDiff(a, b uint8) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}

func TestDecodeFramePNGExact(t *testing.T) {
	t.Parallel()

	src := testImage(8, 8)
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	raster, err := DecodeFrame(Frame{Image: buf.Bytes()})
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	r, g, b := raster.At(7, 3)
	want := src.RGBAAt(7, 3)
	if r != want.R || g != want.G || b != want.B {
		t.Errorf("pixel = (%d,%d,%d), want (%d,%d,%d)", r, g, b, want.R, want.G, want.B)
	}
}

func TestDecodeFrameDataURL(t *testing.T) {
	t.Parallel()

	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encodeJPEG(t, testImage(16, 16)))
	if _, err := DecodeBase64Frame(payload); err != nil {
		t.Errorf("data URL frame: %v", err)
	}
}

func TestDecodeFrameUnpadded(t *testing.T) {
	t.Parallel()

	payload := base64.RawStdEncoding.EncodeToString(encodeJPEG(t, testImage(10, 10)))
	if _, err := DecodeBase64Frame(payload); err != nil {
		t.Errorf("unpadded frame: %v", err)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame Frame
	}{
		{"empty", Frame{}},
		{"whitespace", Frame{Encoded: "  \n"}},
		{"data url without payload", Frame{Encoded: "data:image/jpeg;base64"}},
		{"not base64", Frame{Encoded: "%%% not base64 %%%"}},
		{"base64 of text", Frame{Encoded: base64.StdEncoding.EncodeToString([]byte("hello world"))}},
		{"truncated jpeg", Frame{Image: encodeJPEG(t, testImage(16, 16))[:40]}},
		{"oversized header", Frame{Encoded: base64.StdEncoding.EncodeToString(
			declareJPEGSize(t, encodeJPEG(t, testImage(16, 16)), 20000, 20000))}},
		{"zero width header", Frame{Image: declareJPEGSize(t, encodeJPEG(t, testImage(16, 16)), 0, 16)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeFrame(tt.frame)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("DecodeFrame() error = %v, want ErrDecode", err)
			}
		})
	}
}

// declareJPEGSize rewrites the SOF0 header of a baseline JPEG so it claims
// w×h pixels while the scan data stays small.
func declareJPEGSize(t *testing.T, jpg []byte, w, h uint16) []byte {
	t.Helper()
	out := append([]byte(nil), jpg...)
	sof := bytes.Index(out, []byte{0xFF, 0xC0})
	if sof < 0 || sof+9 > len(out) {
		t.Fatal("no SOF0 marker in encoded JPEG")
	}
	// FF C0, length(2), precision(1), height(2), width(2)
	binary.BigEndian.PutUint16(out[sof+5:], h)
	binary.BigEndian.PutUint16(out[sof+7:], w)
	return out
}

func TestDecodeFrameRejectsOversizedHeaderCheaply(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(
		declareJPEGSize(t, encodeJPEG(t, testImage(16, 16)), 20000, 20000))

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	_, err := DecodeBase64Frame(payload)
	runtime.ReadMemStats(&after)

	if !errors.Is(err, ErrDecode) {
		t.Fatalf("DecodeBase64Frame() error = %v, want ErrDecode", err)
	}
	if grown := after.TotalAlloc - before.TotalAlloc; grown > 8<<20 {
		t.Errorf("allocated %d bytes rejecting a %d byte frame", grown, len(payload))
	}
}

func TestDecodeFramePixelLimit(t *testing.T) {
	t.Parallel()

	img := encodeJPEG(t, testImage(16, 16))
	if _, err := decodeImage(img, 16*16); err != nil {
		t.Errorf("decodeImage at the limit: %v", err)
	}
	if _, err := decodeImage(img, 16*16-1); !errors.Is(err, ErrDecode) {
		t.Errorf("decodeImage over the limit: error = %v, want ErrDecode", err)
	}
}
