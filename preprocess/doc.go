// Package preprocess turns a video file into a fixed-shape frame tensor.
//
// A Pipeline has two capabilities: Preprocess decodes a video into frames of
// shape [F, C, H, W] holding raw 8-bit intensities, and Transform rescales
// those intensities to [-1, 1]. Two variants exist:
//
//   - ResizePipeline: at most MaxFrames frames, each resized to Height x Width
//   - BucketPipeline: frames resampled to the closest of a set of buckets
//
// Decoding itself is delegated to a ResizeDecoder or BucketDecoder; package
// ffmpeg provides one backed by the ffmpeg command line tools.
package preprocess
