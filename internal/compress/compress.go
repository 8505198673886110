// Package compress frames snapshot bodies into independently compressed
// blocks.
//
// Block format: [uncompressed size u32][stored size u32][data]. A stored
// size of zero means the data follows uncompressed, which is also used when
// compression would not save at least a tenth of the block.
package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrCorrupt is returned for blocks that cannot be decoded.
var ErrCorrupt = errors.New("compress: corrupt block")

// Type is a block compression algorithm.
type Type uint8

const (
	// None stores blocks as is.
	None Type = iota
	// LZ4 favors speed.
	LZ4
	// ZSTD favors ratio.
	ZSTD
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// ParseType is the inverse of Type.String.
func ParseType(name string) (Type, error) {
	switch name {
	case "none", "":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("compress: unknown type %q", name)
	}
}

const (
	headerSize       = 8
	DefaultBlockSize = 256 * 1024
)

var (
	zstdEncoders sync.Pool
	zstdDecoders sync.Pool
)

func getEncoder() *zstd.Encoder {
	if v := zstdEncoders.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getDecoder() *zstd.Decoder {
	if v := zstdDecoders.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// appendBlock appends the framed block for data to dst.
func appendBlock(dst, data []byte, t Type) ([]byte, error) {
	var packed []byte
	switch t {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return dst, err
		}
		packed = buf[:n]
	case ZSTD:
		enc := getEncoder()
		packed = enc.EncodeAll(data, nil)
		zstdEncoders.Put(enc)
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data)))
	if len(packed) == 0 || len(packed)*10 > len(data)*9 {
		dst = binary.LittleEndian.AppendUint32(dst, 0)
		return append(dst, data...), nil
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(packed)))
	return append(dst, packed...), nil
}

// Writer buffers writes and emits one framed block per BlockSize bytes.
type Writer struct {
	w         io.Writer
	t         Type
	blockSize int
	buf       bytes.Buffer
	frame     []byte
	written   int64
}

// NewWriter creates a Writer. A blockSize below one uses DefaultBlockSize.
func NewWriter(w io.Writer, t Type, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	cw := &Writer{w: w, t: t, blockSize: blockSize}
	cw.buf.Grow(blockSize)
	return cw
}

// Write buffers p, flushing full blocks.
func (cw *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		room := cw.blockSize - cw.buf.Len()
		if room <= 0 {
			if err := cw.Flush(); err != nil {
				return total, err
			}
			room = cw.blockSize
		}
		n, _ := cw.buf.Write(p[:min(room, len(p))])
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush writes the buffered bytes as a block.
func (cw *Writer) Flush() error {
	if cw.buf.Len() == 0 {
		return nil
	}
	var err error
	cw.frame, err = appendBlock(cw.frame[:0], cw.buf.Bytes(), cw.t)
	if err != nil {
		return err
	}
	n, err := cw.w.Write(cw.frame)
	cw.written += int64(n)
	if err != nil {
		return err
	}
	cw.buf.Reset()
	return nil
}

// BytesWritten returns the number of framed bytes written so far.
func (cw *Writer) BytesWritten() int64 { return cw.written }

// DecodeAll decodes every block in data and returns the concatenation.
func DecodeAll(data []byte, t Type) ([]byte, error) {
	var out []byte
	for len(data) > 0 {
		if len(data) < headerSize {
			return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		size := int(binary.LittleEndian.Uint32(data))
		stored := int(binary.LittleEndian.Uint32(data[4:]))
		data = data[headerSize:]

		if stored == 0 {
			if len(data) < size {
				return nil, fmt.Errorf("%w: truncated data", ErrCorrupt)
			}
			out = append(out, data[:size]...)
			data = data[size:]
			continue
		}

		if len(data) < stored {
			return nil, fmt.Errorf("%w: truncated data", ErrCorrupt)
		}
		block, err := decodeBlock(data[:stored], size, t)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		data = data[stored:]
	}
	return out, nil
}

func decodeBlock(packed []byte, size int, t Type) ([]byte, error) {
	out := make([]byte, size)
	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(packed, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return out, nil
	case ZSTD:
		dec := getDecoder()
		defer zstdDecoders.Put(dec)
		decoded, err := dec.DecodeAll(packed, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if len(decoded) != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: compressed block in %s stream", ErrCorrupt, t)
	}
}
