// Package tensor provides a minimal dense float32 tensor used to move frames and
// latents between decoders, encoders and the latent cache.
//
// A Tensor is a contiguous row-major buffer plus a shape. Only the handful of
// operations the dataset pipeline needs are provided:
//
//   - Unsqueeze: insert a singleton axis
//   - Permute: reorder axes (always returns a contiguous copy)
//   - Index: select one slice along the leading axis
//   - Stack: join equally shaped tensors along a new leading axis
//   - Map / Normalize: elementwise transforms
//
// Axis conventions used across latentset:
//
//	frames:  [F, C, H, W]
//	batched: [B, C, F, H, W]
//	latent:  [C, F, H, W]
package tensor
