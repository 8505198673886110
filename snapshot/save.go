package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/hupe1980/zspatial/blobstore"
	"github.com/hupe1980/zspatial/index"
	"github.com/hupe1980/zspatial/internal/compress"
	"github.com/hupe1980/zspatial/resource"
	"github.com/hupe1980/zspatial/store"
)

// Info summarizes a written or loaded snapshot.
type Info struct {
	Header Header
	// Size is the size of the blob in bytes.
	Size int64
}

// Save writes idx to bs under name, replacing an existing blob.
//
// The index should not be modified while it is saved; records added
// concurrently may or may not be included.
func Save(ctx context.Context, bs blobstore.BlobStore, name string, idx *index.Index, optFns ...func(o *Options)) (Info, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return Info{}, err
	}
	ct, err := compress.ParseType(opts.Compression)
	if err != nil {
		return Info{}, err
	}
	if len(opts.Codec.Name()) > 255 {
		return Info{}, fmt.Errorf("snapshot: codec name %q too long", opts.Codec.Name())
	}

	hdr := Header{
		Version:     CurrentVersion,
		CreatedAt:   time.Now().UTC(),
		Compression: ct.String(),
		Space:       idx.Space().Config(),
		MaxZ:        idx.MaxZ(),
	}

	var body bytes.Buffer
	bw := compress.NewWriter(&body, ct, opts.BlockSize)

	// Records are collected while objects are written so that both sections
	// describe the same state.
	var (
		recs  []store.Record
		frame []byte
		seen  = make(map[int64]struct{})
	)
	for r, err := range idx.Records() {
		if err != nil {
			return Info{}, err
		}
		if err := ctx.Err(); err != nil {
			return Info{}, err
		}
		recs = append(recs, r)
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}

		frame, err = opts.Registry.Encode(frame[:0], r.Object)
		if err != nil {
			return Info{}, err
		}
		if _, err := bw.Write(frame); err != nil {
			return Info{}, err
		}
		hdr.RawSize += int64(len(frame))
		hdr.Objects++
	}

	var rec [recordSize]byte
	for _, r := range recs {
		binary.LittleEndian.PutUint64(rec[:], uint64(r.Z))
		binary.LittleEndian.PutUint64(rec[8:], uint64(r.ID))
		if _, err := bw.Write(rec[:]); err != nil {
			return Info{}, err
		}
	}
	hdr.Records = len(recs)
	hdr.RawSize += int64(len(recs) * recordSize)
	if err := bw.Flush(); err != nil {
		return Info{}, err
	}

	header, err := opts.Codec.Marshal(hdr)
	if err != nil {
		return Info{}, fmt.Errorf("snapshot: encode header: %w", err)
	}

	p := prefix{
		version:   CurrentVersion,
		checksum:  crc32.Update(crc32.Checksum(header, castagnoli), castagnoli, body.Bytes()),
		headerLen: uint32(len(header)),
		codec:     opts.Codec.Name(),
	}

	var out bytes.Buffer
	out.Grow(prefixSize + len(p.codec) + len(header) + body.Len())
	w := resource.NewRateLimitedWriter(ctx, &out, opts.Resources)
	if _, err := w.Write(p.appendTo(nil)); err != nil {
		return Info{}, err
	}
	if _, err := w.Write(header); err != nil {
		return Info{}, err
	}
	if _, err := body.WriteTo(w); err != nil {
		return Info{}, err
	}

	size := int64(out.Len())
	if err := bs.Put(ctx, name, out.Bytes()); err != nil {
		return Info{}, fmt.Errorf("snapshot: put %s: %w", name, err)
	}
	return Info{Header: hdr, Size: size}, nil
}
