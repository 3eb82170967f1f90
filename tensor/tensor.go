package tensor

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidShape is returned when a shape has non-positive dimensions or does not
// match the number of elements provided.
var ErrInvalidShape = errors.New("tensor: invalid shape")

// ErrInvalidAxis is returned when an axis argument is out of range.
var ErrInvalidAxis = errors.New("tensor: invalid axis")

// Tensor is a dense row-major float32 tensor.
type Tensor struct {
	shape []int
	data  []float32
}

// New creates a tensor that takes ownership of data.
func New(shape []int, data []float32) (*Tensor, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d elements, got %d", ErrInvalidShape, shape, n, len(data))
	}
	return &Tensor{shape: slices.Clone(shape), data: data}, nil
}

// Zeros allocates a zero-filled tensor.
func Zeros(shape ...int) (*Tensor, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	return &Tensor{shape: slices.Clone(shape), data: make([]float32, n)}, nil
}

// FromUint8 converts raw 8-bit samples into a float32 tensor without rescaling.
func FromUint8(shape []int, raw []byte) (*Tensor, error) {
	data := make([]float32, len(raw))
	for i, v := range raw {
		data[i] = float32(v)
	}
	return New(shape, data)
}

func numElements(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrInvalidShape)
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidShape, shape)
		}
		n *= d
	}
	return n, nil
}

// Shape returns a copy of the tensor shape.
func (t *Tensor) Shape() []int { return slices.Clone(t.shape) }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.shape) }

// Dim returns the size of axis i.
func (t *Tensor) Dim(i int) int { return t.shape[i] }

// Len returns the number of elements.
func (t *Tensor) Len() int { return len(t.data) }

// Data returns the underlying buffer. The slice aliases the tensor.
func (t *Tensor) Data() []float32 { return t.data }

// SizeBytes returns the in-memory payload size.
func (t *Tensor) SizeBytes() int64 { return int64(len(t.data)) * 4 }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{shape: slices.Clone(t.shape), data: slices.Clone(t.data)}
}

// Equal reports whether both tensors have the same shape and bit-identical data.
func (t *Tensor) Equal(o *Tensor) bool {
	if t == nil || o == nil {
		return t == o
	}
	return slices.Equal(t.shape, o.shape) && slices.Equal(t.data, o.data)
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}

// Unsqueeze returns a view with a singleton axis inserted at position axis.
// The returned tensor shares its buffer with t.
func (t *Tensor) Unsqueeze(axis int) (*Tensor, error) {
	if axis < 0 || axis > len(t.shape) {
		return nil, fmt.Errorf("%w: unsqueeze axis %d for rank %d", ErrInvalidAxis, axis, len(t.shape))
	}
	shape := slices.Insert(slices.Clone(t.shape), axis, 1)
	return &Tensor{shape: shape, data: t.data}, nil
}

// Permute reorders the axes of t. axes must be a permutation of 0..rank-1.
// The result is always a freshly allocated contiguous tensor.
func (t *Tensor) Permute(axes ...int) (*Tensor, error) {
	rank := len(t.shape)
	if len(axes) != rank {
		return nil, fmt.Errorf("%w: permute needs %d axes, got %d", ErrInvalidAxis, rank, len(axes))
	}
	seen := make([]bool, rank)
	for _, a := range axes {
		if a < 0 || a >= rank || seen[a] {
			return nil, fmt.Errorf("%w: %v is not a permutation", ErrInvalidAxis, axes)
		}
		seen[a] = true
	}

	src := strides(t.shape)
	outShape := make([]int, rank)
	outSrcStride := make([]int, rank)
	for i, a := range axes {
		outShape[i] = t.shape[a]
		outSrcStride[i] = src[a]
	}

	out := make([]float32, len(t.data))
	idx := make([]int, rank)
	off := 0
	for i := range out {
		out[i] = t.data[off]
		// Odometer increment over the output coordinates.
		for ax := rank - 1; ax >= 0; ax-- {
			idx[ax]++
			off += outSrcStride[ax]
			if idx[ax] < outShape[ax] {
				break
			}
			off -= outSrcStride[ax] * idx[ax]
			idx[ax] = 0
		}
	}
	return &Tensor{shape: outShape, data: out}, nil
}

// Index selects slice i along the leading axis, dropping that axis.
// The returned tensor shares its buffer with t.
func (t *Tensor) Index(i int) (*Tensor, error) {
	if len(t.shape) < 2 {
		return nil, fmt.Errorf("%w: cannot index rank %d tensor", ErrInvalidAxis, len(t.shape))
	}
	if i < 0 || i >= t.shape[0] {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidAxis, i, t.shape[0])
	}
	step := len(t.data) / t.shape[0]
	return &Tensor{shape: slices.Clone(t.shape[1:]), data: t.data[i*step : (i+1)*step]}, nil
}

// Stack joins equally shaped tensors along a new leading axis, preserving order.
func Stack(ts []*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: stack of zero tensors", ErrInvalidShape)
	}
	inner := ts[0].shape
	data := make([]float32, 0, len(ts)*len(ts[0].data))
	for i, x := range ts {
		if !slices.Equal(x.shape, inner) {
			return nil, fmt.Errorf("%w: stack element %d has shape %v, want %v", ErrInvalidShape, i, x.shape, inner)
		}
		data = append(data, x.data...)
	}
	return &Tensor{shape: append([]int{len(ts)}, inner...), data: data}, nil
}

// Map returns a new tensor with fn applied to every element.
func (t *Tensor) Map(fn func(float32) float32) *Tensor {
	out := make([]float32, len(t.data))
	for i, v := range t.data {
		out[i] = fn(v)
	}
	return &Tensor{shape: slices.Clone(t.shape), data: out}
}

func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}
