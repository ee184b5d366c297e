// Package protocol defines frame kinds and the frame format used to carry
// message-oriented traffic over a plain byte stream (TCP or Unix socket).
//
// A WebSocket already delimits messages and marks them text or binary; a
// byte stream does neither, so each frame is prefixed with a fixed 9-byte
// header:
//
//	0      3  4  5         9
//	┌──────┬──┬──┬─────────┬───────────────┐
//	│magic │v │k │ bodyLen │    body ...    │
//	│ lrp  │01│  │ uint32  │ bodyLen bytes  │
//	└──────┴──┴──┴─────────┴───────────────┘
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	MagicByte1 byte = 0x6c // 'l'
	MagicByte2 byte = 0x72 // 'r'
	MagicByte3 byte = 0x70 // 'p'
	Version    byte = 0x01
	HeaderSize int  = 9 // 3 (magic) + 1 (version) + 1 (kind) + 4 (bodyLen)

	// DefaultMaxBody bounds a single frame body.
	DefaultMaxBody = 16 << 20
)

// Kind distinguishes text frames from binary frames.
type Kind byte

const (
	KindText   Kind = 1
	KindBinary Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// ErrFrameTooLarge is returned by Decode when a header announces a body
// larger than the allowed maximum.
var ErrFrameTooLarge = errors.New("protocol: frame too large")

// Encode writes a complete frame to w. Callers sharing w between goroutines
// must serialize calls, or frames will interleave.
func Encode(w io.Writer, kind Kind, body []byte) error {
	buf := make([]byte, HeaderSize+len(body))
	buf[0], buf[1], buf[2] = MagicByte1, MagicByte2, MagicByte3
	buf[3] = Version
	buf[4] = byte(kind)
	binary.BigEndian.PutUint32(buf[5:9], uint32(len(body)))
	copy(buf[HeaderSize:], body)

	_, err := w.Write(buf)
	return err
}

// Decode reads one frame from r. A stream that ends cleanly between frames
// yields io.EOF; a stream that ends inside a frame yields
// io.ErrUnexpectedEOF. maxBody <= 0 selects DefaultMaxBody.
func Decode(r io.Reader, maxBody int) (Kind, []byte, error) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}

	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}

	if header[0] != MagicByte1 || header[1] != MagicByte2 || header[2] != MagicByte3 {
		return 0, nil, fmt.Errorf("invalid magic number: %x", header[0:3])
	}
	if header[3] != Version {
		return 0, nil, fmt.Errorf("unsupported version: %d", header[3])
	}
	kind := Kind(header[4])
	if kind != KindText && kind != KindBinary {
		return 0, nil, fmt.Errorf("unsupported frame kind: %d", header[4])
	}

	bodyLen := binary.BigEndian.Uint32(header[5:9])
	if uint64(bodyLen) > uint64(maxBody) {
		return 0, nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFrameTooLarge, bodyLen, maxBody)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}
	return kind, body, nil
}
