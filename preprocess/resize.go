package preprocess

import (
	"context"
	"fmt"

	"github.com/hupe1980/latentset/tensor"
)

// ResizeConfig configures a ResizePipeline.
type ResizeConfig struct {
	MaxFrames int
	Height    int
	Width     int
}

// ResizePipeline resizes every video to a fixed spatial size and caps its length.
type ResizePipeline struct {
	cfg     ResizeConfig
	decoder ResizeDecoder
}

// NewResizePipeline validates cfg and returns a pipeline using decoder.
func NewResizePipeline(cfg ResizeConfig, decoder ResizeDecoder) (*ResizePipeline, error) {
	if cfg.MaxFrames <= 0 || cfg.Height <= 0 || cfg.Width <= 0 {
		return nil, fmt.Errorf("%w: resize needs positive max frames, height and width, got %d, %d, %d",
			ErrInvalidConfig, cfg.MaxFrames, cfg.Height, cfg.Width)
	}
	if decoder == nil {
		return nil, fmt.Errorf("%w: resize decoder is nil", ErrInvalidConfig)
	}
	return &ResizePipeline{cfg: cfg, decoder: decoder}, nil
}

// Config returns the pipeline configuration.
func (p *ResizePipeline) Config() ResizeConfig { return p.cfg }

// Preprocess implements Pipeline.
func (p *ResizePipeline) Preprocess(ctx context.Context, videoPath string) (*tensor.Tensor, error) {
	frames, err := p.decoder.DecodeResize(ctx, videoPath, p.cfg.MaxFrames, p.cfg.Height, p.cfg.Width)
	if err != nil {
		return nil, err
	}
	if frames == nil || frames.Rank() != 4 || frames.Dim(0) > p.cfg.MaxFrames || frames.Dim(2) != p.cfg.Height || frames.Dim(3) != p.cfg.Width {
		var shape []int
		if frames != nil {
			shape = frames.Shape()
		}
		return nil, &ShapeError{
			Path:  videoPath,
			Shape: shape,
			Want:  fmt.Sprintf("[<=%d, C, %d, %d]", p.cfg.MaxFrames, p.cfg.Height, p.cfg.Width),
		}
	}
	return frames, nil
}

// Transform implements Pipeline.
func (p *ResizePipeline) Transform(frames *tensor.Tensor) (*tensor.Tensor, error) {
	return normalize(frames)
}
