package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/latentset/preprocess"
	"github.com/hupe1980/latentset/tensor"
)

const channels = 3

// Decoder decodes videos through ffprobe and ffmpeg.
type Decoder struct {
	runner   Runner
	selector preprocess.BucketSelector
	ffmpeg   string
	ffprobe  string
	logger   *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(d *Decoder) { d.runner = r }
}

// WithSelector sets the bucket selection strategy used by DecodeBuckets.
func WithSelector(s preprocess.BucketSelector) Option {
	return func(d *Decoder) { d.selector = s }
}

// WithBinaries overrides the ffmpeg and ffprobe executables.
func WithBinaries(ffmpegPath, ffprobePath string) Option {
	return func(d *Decoder) {
		d.ffmpeg = ffmpegPath
		d.ffprobe = ffprobePath
	}
}

// WithLogger sets a logger for per-video debug output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// New returns a Decoder using the binaries on PATH.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		runner:   ExecRunner{},
		selector: preprocess.NearestFramesThenArea,
		ffmpeg:   "ffmpeg",
		ffprobe:  "ffprobe",
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var (
	_ preprocess.ResizeDecoder = (*Decoder)(nil)
	_ preprocess.BucketDecoder = (*Decoder)(nil)
)

// DecodeResize samples at most maxFrames frames with stride n/maxFrames and
// scales each to height x width. Videos shorter than maxFrames keep all of
// their frames.
func (d *Decoder) DecodeResize(ctx context.Context, path string, maxFrames, height, width int) (*tensor.Tensor, error) {
	info, err := d.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	want := min(info.Frames, maxFrames)
	return d.decode(ctx, path, Stride(info.Frames, want), want, height, width)
}

// DecodeBuckets selects a bucket for the video and samples exactly that many
// frames, scaled to the bucket's spatial size.
func (d *Decoder) DecodeBuckets(ctx context.Context, path string, buckets []preprocess.Bucket) (*tensor.Tensor, error) {
	info, err := d.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	b, err := d.selector.Select(info, buckets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.logger.DebugContext(ctx, "selected bucket", "path", path, "bucket", b.String(), "frames", info.Frames)

	frames, err := d.decode(ctx, path, Stride(info.Frames, b.Frames), b.Frames, b.Height, b.Width)
	if err != nil {
		return nil, err
	}
	if frames.Dim(0) != b.Frames {
		return nil, fmt.Errorf("%s: decoded %d frames, bucket %s needs %d", path, frames.Dim(0), b, b.Frames)
	}
	return frames, nil
}

// Stride returns the frame step that yields at least want frames out of n.
func Stride(n, want int) int {
	if want <= 0 || n <= want {
		return 1
	}
	return n / want
}

// Args returns the ffmpeg arguments that emit every stride-th frame of path,
// at most count of them, scaled to height x width as raw rgb24 on stdout.
func Args(path string, stride, count, height, width int) []string {
	filter := fmt.Sprintf("select='not(mod(n\\,%d))',scale=%d:%d:flags=bilinear", stride, width, height)
	return []string{
		"-v", "error",
		"-nostdin",
		"-i", path,
		"-vf", filter,
		"-fps_mode", "passthrough",
		"-frames:v", fmt.Sprint(count),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	}
}

func (d *Decoder) decode(ctx context.Context, path string, stride, count, height, width int) (*tensor.Tensor, error) {
	if height <= 0 || width <= 0 || count <= 0 {
		return nil, fmt.Errorf("%s: invalid target %dx%dx%d", path, count, height, width)
	}
	raw, err := d.runner.Output(ctx, d.ffmpeg, Args(path, stride, count, height, width)...)
	if err != nil {
		return nil, err
	}

	frameSize := height * width * channels
	n := len(raw) / frameSize
	if n == 0 || len(raw)%frameSize != 0 {
		return nil, fmt.Errorf("%s: ffmpeg returned %d bytes, not a multiple of %d", path, len(raw), frameSize)
	}
	n = min(n, count)

	hwc, err := tensor.FromUint8([]int{n, height, width, channels}, raw[:n*frameSize])
	if err != nil {
		return nil, err
	}
	return hwc.Permute(0, 3, 1, 2)
}
