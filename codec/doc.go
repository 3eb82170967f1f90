// Package codec defines the on-disk format of cached latents.
//
// A blob is self-describing: the header records dtype, compression and shape,
// so readers never need to know which Codec wrote it. Changing the layout is a
// breaking change for existing caches; bump Version when doing so.
//
// Layout (little-endian):
//
//	magic       [4]byte  "LTNT"
//	version     uint8
//	dtype       uint8    Float32 | Float16
//	compression uint8    None | LZ4 | ZSTD
//	rank        uint8
//	dims        [rank]uint32
//	rawLen      uint32   payload size before compression
//	payloadLen  uint32
//	crc         uint32   CRC-32C of the stored payload
//	payload     [payloadLen]byte
//
// Float32 storage is bit-exact. Float16 halves the size at the cost of precision.
package codec
