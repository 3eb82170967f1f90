// Package ffmpeg decodes videos into frame tensors by shelling out to the
// ffprobe and ffmpeg binaries.
//
// Decoder implements both preprocess.ResizeDecoder and
// preprocess.BucketDecoder. Frames are sampled with a fixed stride in a single
// ffmpeg pass (select filter plus scale) and streamed back as raw rgb24, so
// no intermediate files are written.
//
//	dec := ffmpeg.New()
//	p, err := preprocess.NewResizePipeline(preprocess.ResizeConfig{
//		MaxFrames: 49, Height: 480, Width: 720,
//	}, dec)
package ffmpeg
