package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/hupe1980/zspatial/space"
)

const (
	magic = 0x5850535A // "ZSPX"

	// CurrentVersion is the snapshot format written by Save.
	CurrentVersion = 1

	prefixSize = 4 + 4 + 4 + 4 + 1
	recordSize = 8 + 8
)

var (
	// ErrInvalidFormat is returned for blobs that are not snapshots.
	ErrInvalidFormat = errors.New("snapshot: invalid format")

	// ErrIncompatibleVersion is returned for snapshots written by a newer
	// format version.
	ErrIncompatibleVersion = errors.New("snapshot: incompatible version")

	// ErrChecksumMismatch is returned when the header and body do not match
	// their checksum.
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Header describes a snapshot.
type Header struct {
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"created_at"`
	Compression string       `json:"compression"`
	Space       space.Config `json:"space"`
	MaxZ        int          `json:"max_z"`
	Objects     int          `json:"objects"`
	Records     int          `json:"records"`
	// RawSize is the size of the body before compression.
	RawSize int64 `json:"raw_size"`
}

// prefix is the fixed-size part in front of the header.
type prefix struct {
	version   uint32
	checksum  uint32
	headerLen uint32
	codec     string
}

func (p prefix) appendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, magic)
	dst = binary.LittleEndian.AppendUint32(dst, p.version)
	dst = binary.LittleEndian.AppendUint32(dst, p.checksum)
	dst = binary.LittleEndian.AppendUint32(dst, p.headerLen)
	dst = append(dst, byte(len(p.codec)))
	return append(dst, p.codec...)
}

// parsePrefix returns the prefix and the number of bytes it occupies.
func parsePrefix(data []byte) (prefix, int, error) {
	if len(data) < prefixSize {
		return prefix{}, 0, fmt.Errorf("%w: truncated prefix", ErrInvalidFormat)
	}
	if m := binary.LittleEndian.Uint32(data); m != magic {
		return prefix{}, 0, fmt.Errorf("%w: magic %08x", ErrInvalidFormat, m)
	}
	p := prefix{
		version:   binary.LittleEndian.Uint32(data[4:]),
		checksum:  binary.LittleEndian.Uint32(data[8:]),
		headerLen: binary.LittleEndian.Uint32(data[12:]),
	}
	if p.version == 0 || p.version > CurrentVersion {
		return prefix{}, 0, fmt.Errorf("%w: %d", ErrIncompatibleVersion, p.version)
	}
	n := int(data[16])
	if len(data) < prefixSize+n {
		return prefix{}, 0, fmt.Errorf("%w: truncated codec name", ErrInvalidFormat)
	}
	p.codec = string(data[prefixSize : prefixSize+n])
	return p, prefixSize + n, nil
}
