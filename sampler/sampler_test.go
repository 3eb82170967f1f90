package sampler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/latentset"
)

type fakeSource struct {
	records []*latentset.Record
	failAt  int
	gets    int
}

func (f *fakeSource) Len() int { return len(f.records) }

func (f *fakeSource) Get(_ context.Context, q latentset.Query) ([]*latentset.Record, error) {
	f.gets++
	i := int(q.(latentset.Index))
	if i == f.failAt {
		return nil, errors.New("boom")
	}
	return []*latentset.Record{f.records[i]}, nil
}

// newSource alternates two latent shapes.
func newSource(n int) *fakeSource {
	shapes := []latentset.Metadata{{NumFrames: 13, Height: 60, Width: 90}, {NumFrames: 4, Height: 32, Width: 32}}
	src := &fakeSource{failAt: -1}
	for i := range n {
		src.records = append(src.records, &latentset.Record{
			Prompt:   fmt.Sprint(i),
			Metadata: shapes[i%2],
		})
	}
	return src
}

func collect(t *testing.T, s *BucketSampler) []latentset.Prefetched {
	t.Helper()
	var out []latentset.Prefetched
	for b, err := range s.Batches(context.Background()) {
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestBucketSampler(t *testing.T) {
	src := newSource(7)
	s, err := New(src, 2)
	require.NoError(t, err)

	batches := collect(t, s)
	var prompts [][]string
	for _, b := range batches {
		var p []string
		for _, r := range b {
			assert.Equal(t, b[0].Metadata, r.Metadata)
			p = append(p, r.Prompt)
		}
		prompts = append(prompts, p)
	}
	assert.Equal(t, [][]string{{"0", "2"}, {"1", "3"}, {"4", "6"}, {"5"}}, prompts)
	assert.Equal(t, 7, src.gets)
}

func TestBucketSampler_DropLast(t *testing.T) {
	s, err := New(newSource(7), 2, WithDropLast())
	require.NoError(t, err)

	batches := collect(t, s)
	require.Len(t, batches, 3)
	for _, b := range batches {
		assert.Len(t, b, 2)
	}
}

func TestBucketSampler_ShuffleIsSeeded(t *testing.T) {
	run := func(seed uint64) []string {
		s, err := New(newSource(20), 3, WithShuffle(seed))
		require.NoError(t, err)
		var p []string
		for _, b := range collect(t, s) {
			for _, r := range b {
				p = append(p, r.Prompt)
			}
		}
		return p
	}

	a, b := run(7), run(7)
	assert.Equal(t, a, b)
	assert.Len(t, a, 20)
	assert.ElementsMatch(t, a, run(8))
}

func TestBucketSampler_BatchesRoundTripThroughGet(t *testing.T) {
	s, err := New(newSource(4), 2)
	require.NoError(t, err)

	ds := &prefetchEcho{}
	for _, b := range collect(t, s) {
		got, err := ds.Get(context.Background(), b)
		require.NoError(t, err)
		assert.Equal(t, []*latentset.Record(b), got)
	}
}

// prefetchEcho mirrors Dataset.Get for Prefetched queries.
type prefetchEcho struct{}

func (prefetchEcho) Get(_ context.Context, q latentset.Query) ([]*latentset.Record, error) {
	return q.(latentset.Prefetched), nil
}

func TestBucketSampler_Error(t *testing.T) {
	src := newSource(5)
	src.failAt = 3
	s, err := New(src, 2)
	require.NoError(t, err)

	var batches int
	var gotErr error
	for b, err := range s.Batches(context.Background()) {
		if err != nil {
			gotErr = err
			break
		}
		batches++
		assert.NotEmpty(t, b)
	}
	require.Error(t, gotErr)
	assert.Equal(t, 1, batches)
}

func TestBucketSampler_EarlyBreak(t *testing.T) {
	src := newSource(10)
	s, err := New(src, 1)
	require.NoError(t, err)

	for range s.Batches(context.Background()) {
		break
	}
	assert.Equal(t, 1, src.gets)
}

func TestNew_InvalidBatchSize(t *testing.T) {
	_, err := New(newSource(1), 0)
	require.ErrorIs(t, err, latentset.ErrInvalidConfig)
}
