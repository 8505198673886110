package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/hupe1980/zspatial/blobstore"
	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/index"
	"github.com/hupe1980/zspatial/internal/compress"
	"github.com/hupe1980/zspatial/resource"
	"github.com/hupe1980/zspatial/space"
	"github.com/hupe1980/zspatial/store"
)

// Load reads the snapshot name from bs and rebuilds the index it holds.
func Load(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...func(o *Options)) (*index.Index, Info, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, Info{}, err
	}

	data, release, err := readBlob(ctx, bs, name, opts.Resources)
	if err != nil {
		return nil, Info{}, err
	}
	defer release()

	hdr, body, err := parse(data)
	if err != nil {
		return nil, Info{}, err
	}
	info := Info{Header: hdr, Size: int64(len(data))}

	ct, err := compress.ParseType(hdr.Compression)
	if err != nil {
		return nil, info, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	// The decoded body is accounted on top of the blob itself.
	if err := opts.Resources.AcquireMemory(ctx, hdr.RawSize); err != nil {
		return nil, info, err
	}
	defer opts.Resources.ReleaseMemory(hdr.RawSize)

	raw, err := compress.DecodeAll(body, ct)
	if err != nil {
		return nil, info, err
	}
	if int64(len(raw)) != hdr.RawSize {
		return nil, info, fmt.Errorf("%w: body is %d bytes, header says %d", ErrInvalidFormat, len(raw), hdr.RawSize)
	}

	s, err := space.FromConfig(hdr.Space)
	if err != nil {
		return nil, info, fmt.Errorf("snapshot: %w", err)
	}

	// Every object frame takes at least one byte.
	if hdr.Objects > len(raw) {
		return nil, info, fmt.Errorf("%w: %d objects in a %d byte body", ErrInvalidFormat, hdr.Objects, len(raw))
	}
	objects := make(map[int64]space.Object, hdr.Objects)
	for i := 0; i < hdr.Objects; i++ {
		obj, n, err := opts.Registry.Decode(raw)
		if err != nil {
			return nil, info, fmt.Errorf("snapshot: object %d: %w", i, err)
		}
		objects[obj.ID()] = obj
		raw = raw[n:]
	}

	if hdr.Records > len(raw)/recordSize || len(raw) != hdr.Records*recordSize {
		return nil, info, fmt.Errorf("%w: record section is %d bytes for %d records", ErrInvalidFormat, len(raw), hdr.Records)
	}
	recs := make([]store.Record, hdr.Records)
	for i := range recs {
		z := space.ZValue(binary.LittleEndian.Uint64(raw[i*recordSize:]))
		id := int64(binary.LittleEndian.Uint64(raw[i*recordSize+8:]))
		obj, ok := objects[id]
		if !ok {
			return nil, info, fmt.Errorf("%w: record %d references unknown object %d", ErrInvalidFormat, i, id)
		}
		recs[i] = store.Record{Key: store.Key{Z: z, ID: id}, Object: obj}
	}

	indexOpts := append([]func(o *index.Options){func(o *index.Options) { o.MaxZ = hdr.MaxZ }}, opts.IndexOptions...)
	idx := index.New(s, indexOpts...)
	if err := idx.AddRecords(recs); err != nil {
		return nil, info, err
	}
	return idx, info, nil
}

// ReadHeader reads only the header of a snapshot. The checksum is not
// verified.
func ReadHeader(ctx context.Context, bs blobstore.BlobStore, name string) (Header, error) {
	b, err := bs.Open(ctx, name)
	if err != nil {
		return Header{}, err
	}
	defer b.Close()

	head := make([]byte, prefixSize+255)
	n, err := b.ReadAt(ctx, head, 0)
	if err != nil && err != io.EOF {
		return Header{}, err
	}
	p, off, err := parsePrefix(head[:n])
	if err != nil {
		return Header{}, err
	}

	buf := make([]byte, p.headerLen)
	if m, err := b.ReadAt(ctx, buf, int64(off)); err != nil && !(err == io.EOF && m == len(buf)) {
		return Header{}, fmt.Errorf("%w: truncated header", ErrInvalidFormat)
	}
	return decodeHeader(p, buf)
}

// parse splits a snapshot into its header and body. The checksum covers
// both and is verified before the header is decoded.
func parse(data []byte) (Header, []byte, error) {
	p, off, err := parsePrefix(data)
	if err != nil {
		return Header{}, nil, err
	}
	if uint64(len(data)-off) < uint64(p.headerLen) {
		return Header{}, nil, fmt.Errorf("%w: truncated header", ErrInvalidFormat)
	}
	if crc32.Checksum(data[off:], castagnoli) != p.checksum {
		return Header{}, nil, ErrChecksumMismatch
	}
	hdr, err := decodeHeader(p, data[off:off+int(p.headerLen)])
	if err != nil {
		return Header{}, nil, err
	}
	return hdr, data[off+int(p.headerLen):], nil
}

func decodeHeader(p prefix, data []byte) (Header, error) {
	c, ok := codec.ByName(p.codec)
	if !ok {
		return Header{}, fmt.Errorf("%w: unknown header codec %q", ErrInvalidFormat, p.codec)
	}
	var hdr Header
	if err := c.Unmarshal(data, &hdr); err != nil {
		return Header{}, fmt.Errorf("%w: header: %v", ErrInvalidFormat, err)
	}
	if hdr.Objects < 0 || hdr.Records < 0 || hdr.RawSize < 0 {
		return Header{}, fmt.Errorf("%w: negative counts", ErrInvalidFormat)
	}
	return hdr, nil
}

// readBlob reads the whole blob through the IO limiter. The returned release
// function gives back the memory reserved for it.
func readBlob(ctx context.Context, bs blobstore.BlobStore, name string, rc *resource.Controller) ([]byte, func(), error) {
	b, err := bs.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	defer b.Close()

	size := b.Size()
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return nil, nil, err
	}
	release := func() { rc.ReleaseMemory(size) }

	data := make([]byte, size)
	r := resource.NewRateLimitedReader(ctx, &blobReader{ctx: ctx, b: b}, rc)
	if _, err := io.ReadFull(r, data); err != nil {
		release()
		return nil, nil, fmt.Errorf("snapshot: read %s: %w", name, err)
	}
	return data, release, nil
}

// blobReader reads a blob front to back in chunks.
type blobReader struct {
	ctx context.Context
	b   blobstore.Blob
	off int64
}

const readChunk = 1 << 20

func (r *blobReader) Read(p []byte) (int, error) {
	if r.off >= r.b.Size() {
		return 0, io.EOF
	}
	if len(p) > readChunk {
		p = p[:readChunk]
	}
	n, err := r.b.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}
