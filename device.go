package latentset

import (
	"context"

	"github.com/hupe1980/latentset/tensor"
)

// Device moves tensors between host memory and the memory the encoder runs on.
type Device interface {
	// ToDevice returns t placed on the device.
	ToDevice(ctx context.Context, t *tensor.Tensor) (*tensor.Tensor, error)
	// ToHost returns t placed in host memory.
	ToHost(ctx context.Context, t *tensor.Tensor) (*tensor.Tensor, error)
}

// CPU is the host device. Both transfers are identities.
type CPU struct{}

func (CPU) ToDevice(_ context.Context, t *tensor.Tensor) (*tensor.Tensor, error) { return t, nil }
func (CPU) ToHost(_ context.Context, t *tensor.Tensor) (*tensor.Tensor, error)   { return t, nil }

func (CPU) String() string { return "cpu" }

// EncodeFunc maps a [B, C, F, H, W] batch to [B, C', F', H', W'] latents.
type EncodeFunc func(ctx context.Context, batch *tensor.Tensor) (*tensor.Tensor, error)
