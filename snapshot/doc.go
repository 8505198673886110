// Package snapshot persists an index to a blob store and restores it.
//
// A snapshot holds the index's space configuration, every object encoded
// through a codec.Registry, and the exact (z-value, id) records the objects
// were indexed under. Loading rebuilds the records without decomposing
// anything, so a restored index answers joins exactly like the original.
//
// # Layout
//
//	Magic      (4 bytes)  "ZSPX"
//	Version    (4 bytes)
//	Checksum   (4 bytes)  CRC32C of the header and body
//	HeaderLen  (4 bytes)
//	CodecLen   (1 byte)
//	Codec      (CodecLen bytes), name of the header codec
//	Header     (HeaderLen bytes)
//	Body       compressed blocks of object frames, then 16-byte records
//
// All integers are little-endian.
package snapshot
