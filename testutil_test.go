package latentset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/latentset/preprocess"
	"github.com/hupe1980/latentset/tensor"
)

const (
	testFrames = 4
	testHeight = 8
	testWidth  = 6
)

type fixture struct {
	root   string
	videos []string
}

// newFixture lays out root/prompts.txt, root/videos.txt and root/videos/clip<i>.mp4.
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "videos"), 0o755))

	var prompts, lines []string
	f := &fixture{root: root}
	for i := range n {
		rel := fmt.Sprintf("videos/clip%d.mp4", i)
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte{byte(i)}, 0o644))
		prompts = append(prompts, fmt.Sprintf("  a clip number %d  ", i))
		lines = append(lines, rel)
		f.videos = append(f.videos, filepath.Join(root, rel))
	}
	f.writeLists(t, prompts, lines)
	return f
}

func (f *fixture) writeLists(t *testing.T, prompts, videos []string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "prompts.txt"), []byte(strings.Join(prompts, "\n")+"\n\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "videos.txt"), []byte(strings.Join(videos, "\n")+"\n"), 0o644))
}

// testPipeline decodes every video into frames whose pixels equal the
// video file's single byte.
func testPipeline(t *testing.T, decodes *atomic.Int64) preprocess.Pipeline {
	t.Helper()
	dec := preprocess.ResizeDecoderFunc(func(_ context.Context, path string, maxFrames, h, w int) (*tensor.Tensor, error) {
		if decodes != nil {
			decodes.Add(1)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw := make([]byte, maxFrames*3*h*w)
		for i := range raw {
			raw[i] = b[0] * 50
		}
		return tensor.FromUint8([]int{maxFrames, 3, h, w}, raw)
	})
	p, err := preprocess.NewResizePipeline(preprocess.ResizeConfig{MaxFrames: testFrames, Height: testHeight, Width: testWidth}, dec)
	require.NoError(t, err)
	return p
}

// countingEncoder halves the spatial size, maps 3 channels to 2 and fills the
// latent with the first input value.
type countingEncoder struct {
	calls atomic.Int64

	mu     sync.Mutex
	shapes [][]int
}

func (e *countingEncoder) Encode(_ context.Context, batch *tensor.Tensor) (*tensor.Tensor, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.shapes = append(e.shapes, batch.Shape())
	e.mu.Unlock()
	s := batch.Shape()
	out, err := tensor.Zeros(s[0], 2, s[2], s[3]/2, s[4]/2)
	if err != nil {
		return nil, err
	}
	v := batch.Data()[0]
	for i := range out.Data() {
		out.Data()[i] = v
	}
	return out, nil
}
