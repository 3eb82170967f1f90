package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/hupe1980/latentset/preprocess"
)

// ErrNoVideoStream is returned when ffprobe reports no usable video stream.
var ErrNoVideoStream = errors.New("ffmpeg: no video stream")

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	NbFrames      string `json:"nb_frames"`
	NbReadPackets string `json:"nb_read_packets"`
}

// Probe returns the frame count and spatial size of the first video stream.
func (d *Decoder) Probe(ctx context.Context, path string) (preprocess.VideoInfo, error) {
	out, err := d.runner.Output(ctx, d.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=width,height,nb_frames,nb_read_packets",
		"-of", "json",
		path,
	)
	if err != nil {
		return preprocess.VideoInfo{}, err
	}
	return ParseProbe(out)
}

// ParseProbe converts ffprobe JSON output into a VideoInfo. The container's
// nb_frames is used when present, the counted packets otherwise.
func ParseProbe(data []byte) (preprocess.VideoInfo, error) {
	var raw probeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return preprocess.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(raw.Streams) == 0 {
		return preprocess.VideoInfo{}, ErrNoVideoStream
	}

	s := raw.Streams[0]
	frames := atoi(s.NbFrames)
	if frames <= 0 {
		frames = atoi(s.NbReadPackets)
	}
	if frames <= 0 || s.Width <= 0 || s.Height <= 0 {
		return preprocess.VideoInfo{}, fmt.Errorf("%w: frames=%d size=%dx%d", ErrNoVideoStream, frames, s.Width, s.Height)
	}
	return preprocess.VideoInfo{Frames: frames, Height: s.Height, Width: s.Width}, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
