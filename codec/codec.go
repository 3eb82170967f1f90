package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/hupe1980/latentset/internal/f16"
	"github.com/hupe1980/latentset/tensor"
)

// Version is the current blob layout version.
const Version uint8 = 1

var magic = [4]byte{'L', 'T', 'N', 'T'}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var (
	// ErrCorrupt is returned when a blob fails structural or checksum validation.
	ErrCorrupt = errors.New("codec: corrupt latent blob")
	// ErrUnsupported is returned for unknown versions, dtypes or compression types.
	ErrUnsupported = errors.New("codec: unsupported latent blob")
)

// DType is the element storage type.
type DType uint8

const (
	Float32 DType = 1
	Float16 DType = 2
)

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
}

func (d DType) size() int {
	if d == Float16 {
		return 2
	}
	return 4
}

// Codec encodes tensors into latent blobs.
// The zero value is not valid; use Default or construct with explicit fields.
type Codec struct {
	DType       DType
	Compression Compression
}

// Default stores float32 with LZ4 compression.
var Default = Codec{DType: Float32, Compression: LZ4}

// Name returns a stable identifier such as "float32+lz4".
func (c Codec) Name() string {
	return c.DType.String() + "+" + c.Compression.String()
}

// ByName returns the codec for a name produced by Name.
func ByName(name string) (Codec, bool) {
	for _, d := range []DType{Float32, Float16} {
		for _, comp := range []Compression{None, LZ4, ZSTD} {
			c := Codec{DType: d, Compression: comp}
			if c.Name() == name {
				return c, true
			}
		}
	}
	return Codec{}, false
}

// Marshal encodes t.
func (c Codec) Marshal(t *tensor.Tensor) ([]byte, error) {
	if t == nil {
		return nil, errors.New("codec: nil tensor")
	}
	shape := t.Shape()
	if len(shape) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: rank %d", ErrUnsupported, len(shape))
	}
	if err := checkFields(shape, t.Len()*c.DType.size()); err != nil {
		return nil, err
	}

	var raw []byte
	switch c.DType {
	case Float32:
		raw = make([]byte, 0, t.Len()*4)
		for _, v := range t.Data() {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
		}
	case Float16:
		raw = f16.AppendFloat32s(make([]byte, 0, t.Len()*2), t.Data())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, c.DType)
	}

	comp, payload, err := compress(raw, c.Compression)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes", ErrUnsupported, len(payload))
	}

	var buf bytes.Buffer
	buf.Grow(headerSize(len(shape)) + len(payload))
	buf.Write(magic[:])
	buf.WriteByte(Version)
	buf.WriteByte(byte(c.DType))
	buf.WriteByte(byte(comp))
	buf.WriteByte(byte(len(shape)))
	for _, d := range shape {
		_ = binary.Write(&buf, binary.LittleEndian, uint32(d))
	}
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(raw)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	_ = binary.Write(&buf, binary.LittleEndian, crc32.Checksum(payload, castagnoli))
	buf.Write(payload)
	return buf.Bytes(), nil
}

// checkFields rejects dimensions and raw lengths that overflow the header's
// u32 fields.
func checkFields(shape []int, rawLen int) error {
	for _, d := range shape {
		if uint64(d) > math.MaxUint32 {
			return fmt.Errorf("%w: dimension %d", ErrUnsupported, d)
		}
	}
	if uint64(rawLen) > math.MaxUint32 {
		return fmt.Errorf("%w: %d raw bytes", ErrUnsupported, rawLen)
	}
	return nil
}

func headerSize(rank int) int {
	return 4 + 4 + 4*rank + 12
}

// Header is the decoded blob header.
type Header struct {
	Version     uint8
	DType       DType
	Compression Compression
	Shape       []int
	RawLen      int
	PayloadLen  int
	Checksum    uint32
}

// ReadHeader parses the header of data without touching the payload.
func ReadHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < 8 || !bytes.Equal(data[:4], magic[:]) {
		return h, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	h.Version = data[4]
	if h.Version != Version {
		return h, fmt.Errorf("%w: version %d", ErrUnsupported, h.Version)
	}
	h.DType = DType(data[5])
	h.Compression = Compression(data[6])
	rank := int(data[7])
	if len(data) < headerSize(rank) {
		return h, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}
	off := 8
	h.Shape = make([]int, rank)
	for i := range h.Shape {
		h.Shape[i] = int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
	}
	h.RawLen = int(binary.LittleEndian.Uint32(data[off:]))
	h.PayloadLen = int(binary.LittleEndian.Uint32(data[off+4:]))
	h.Checksum = binary.LittleEndian.Uint32(data[off+8:])
	return h, nil
}

// Unmarshal decodes a blob written by any Codec.
func Unmarshal(data []byte) (*tensor.Tensor, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if h.DType != Float32 && h.DType != Float16 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, h.DType)
	}

	start := headerSize(len(h.Shape))
	if len(data) != start+h.PayloadLen {
		return nil, fmt.Errorf("%w: payload length %d, have %d bytes", ErrCorrupt, h.PayloadLen, len(data)-start)
	}
	payload := data[start:]
	if crc32.Checksum(payload, castagnoli) != h.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	raw, err := decompress(payload, h.RawLen, h.Compression)
	if err != nil {
		return nil, err
	}

	n := 1
	for _, d := range h.Shape {
		n *= d
	}
	if n*h.DType.size() != len(raw) {
		return nil, fmt.Errorf("%w: shape %v does not match %d payload bytes", ErrCorrupt, h.Shape, len(raw))
	}

	out := make([]float32, n)
	if h.DType == Float16 {
		f16.DecodeInto(out, raw)
	} else {
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	}
	t, err := tensor.New(h.Shape, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return t, nil
}
