// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package landmark

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tomtom215/studybuddy/internal/focus"
)

// ProtocolVersion is the version a worker announces in its ready message.
const ProtocolVersion = 1

const (
	statusOK    byte = 0
	statusError byte = 1
	statusReady byte = 2

	// maxResponseBytes bounds a response; a refined mesh needs ~5.7KB.
	maxResponseBytes = 1 << 20
	pointBytes       = 12
)

var (
	// ErrProtocol marks a response that does not follow the wire protocol.
	// The worker that sent it cannot be trusted for further calls.
	ErrProtocol = errors.New("landmark worker protocol violation")

	// ErrPoolClosed is returned by Detect before Start or after Close.
	ErrPoolClosed = errors.New("landmark pool is not running")
)

// WorkerError is an inference failure reported by the worker itself. The
// worker stays usable after one.
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return "landmark worker: " + e.Message
}

func writeRequest(w io.Writer, r *focus.Raster) error {
	if r == nil || r.Width <= 0 || r.Height <= 0 || len(r.Pix) != r.Width*r.Height*3 {
		return fmt.Errorf("invalid raster for landmark request")
	}
	var header [12]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(8+len(r.Pix)))
	binary.BigEndian.PutUint32(header[4:8], uint32(r.Width))
	binary.BigEndian.PutUint32(header[8:12], uint32(r.Height))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write request header: %w", err)
	}
	if _, err := w.Write(r.Pix); err != nil {
		return fmt.Errorf("write request pixels: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed response and returns its status byte
// and body.
func readFrame(r io.Reader) (byte, []byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("read response header: %w", err)
	}
	n := binary.BigEndian.Uint32(header[:])
	if n == 0 || n > maxResponseBytes {
		return 0, nil, fmt.Errorf("%w: response length %d", ErrProtocol, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return buf[0], buf[1:], nil
}

// readResponse reads a detection response. A nil set means no face.
func readResponse(r io.Reader) (*focus.LandmarkSet, error) {
	status, body, err := readFrame(r)
	if err != nil {
		return nil, err
	}
	switch status {
	case statusOK:
		return decodeLandmarks(body)
	case statusError:
		msg, err := decodeMessage(body)
		if err != nil {
			return nil, err
		}
		return nil, &WorkerError{Message: msg}
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProtocol, status)
	}
}

// readReady waits for the startup announcement and checks its version.
func readReady(r io.Reader) error {
	status, body, err := readFrame(r)
	if err != nil {
		return err
	}
	if status != statusReady || len(body) != 4 {
		return fmt.Errorf("%w: expected ready message, got status %d", ErrProtocol, status)
	}
	if v := binary.BigEndian.Uint32(body); v != ProtocolVersion {
		return fmt.Errorf("%w: worker speaks version %d, want %d", ErrProtocol, v, ProtocolVersion)
	}
	return nil
}

func decodeLandmarks(body []byte) (*focus.LandmarkSet, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("%w: short landmark body", ErrProtocol)
	}
	n := int(binary.BigEndian.Uint32(body[:4]))
	body = body[4:]
	if len(body) != n*pointBytes {
		return nil, fmt.Errorf("%w: %d points need %d bytes, got %d", ErrProtocol, n, n*pointBytes, len(body))
	}
	if n == 0 {
		return nil, nil
	}
	set := &focus.LandmarkSet{Points: make([]focus.Point, n)}
	for i := range set.Points {
		off := i * pointBytes
		set.Points[i] = focus.Point{
			X: float64(math.Float32frombits(binary.BigEndian.Uint32(body[off:]))),
			Y: float64(math.Float32frombits(binary.BigEndian.Uint32(body[off+4:]))),
			Z: float64(math.Float32frombits(binary.BigEndian.Uint32(body[off+8:]))),
		}
	}
	return set, nil
}

func decodeMessage(body []byte) (string, error) {
	if len(body) < 4 {
		return "", fmt.Errorf("%w: short error body", ErrProtocol)
	}
	n := int(binary.BigEndian.Uint32(body[:4]))
	if len(body)-4 != n {
		return "", fmt.Errorf("%w: error message length %d, body has %d", ErrProtocol, n, len(body)-4)
	}
	return string(body[4:]), nil
}
