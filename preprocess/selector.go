package preprocess

import (
	"errors"
	"fmt"
)

// ErrNoBucket is returned when no bucket fits a video.
var ErrNoBucket = errors.New("no bucket fits video")

// VideoInfo describes a source video before resampling.
type VideoInfo struct {
	Frames int
	Height int
	Width  int
}

// BucketSelector chooses the target bucket for a video.
type BucketSelector interface {
	Select(info VideoInfo, buckets []Bucket) (Bucket, error)
}

// SelectorFunc adapts a function to BucketSelector.
type SelectorFunc func(info VideoInfo, buckets []Bucket) (Bucket, error)

func (f SelectorFunc) Select(info VideoInfo, buckets []Bucket) (Bucket, error) {
	return f(info, buckets)
}

// NearestFramesThenArea discards buckets needing more frames than the video
// has, keeps those with the largest remaining frame count, and among them picks
// the smallest |H-h| + |W-w|. Ties go to the earliest bucket in the list.
var NearestFramesThenArea BucketSelector = SelectorFunc(nearestFramesThenArea)

func nearestFramesThenArea(info VideoInfo, buckets []Bucket) (Bucket, error) {
	frames := -1
	for _, b := range buckets {
		if b.Frames > 0 && b.Frames <= info.Frames && b.Frames > frames {
			frames = b.Frames
		}
	}
	if frames < 0 {
		return Bucket{}, fmt.Errorf("%w: %d frames is shorter than every bucket", ErrNoBucket, info.Frames)
	}

	var best Bucket
	bestDist := -1
	for _, b := range buckets {
		if b.Frames != frames {
			continue
		}
		d := abs(b.Height-info.Height) + abs(b.Width-info.Width)
		if bestDist < 0 || d < bestDist {
			best, bestDist = b, d
		}
	}
	return best, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
