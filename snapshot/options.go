package snapshot

import (
	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/geom"
	"github.com/hupe1980/zspatial/index"
	"github.com/hupe1980/zspatial/resource"
)

// Options configures Save and Load.
type Options struct {
	// Codec encodes the header on Save. Load uses the codec named in the
	// snapshot.
	Codec codec.Codec

	// Registry encodes and decodes objects. If nil, a registry with the
	// geom types is used.
	Registry *codec.Registry

	// Compression is the body compression on Save: "none", "lz4" or "zstd".
	Compression string

	// BlockSize is the uncompressed size of one body block.
	BlockSize int

	// Resources throttles IO and accounts the memory of Load. May be nil.
	Resources *resource.Controller

	// IndexOptions configure the index Load builds. The budget recorded in
	// the snapshot is applied first.
	IndexOptions []func(o *index.Options)
}

// DefaultOptions are the options Save and Load start from.
var DefaultOptions = Options{
	Codec:       codec.Default,
	Compression: "zstd",
}

func applyOptions(optFns []func(o *Options)) (Options, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.Registry == nil {
		opts.Registry = codec.NewRegistry()
		if err := geom.Register(opts.Registry); err != nil {
			return opts, err
		}
	}
	return opts, nil
}
