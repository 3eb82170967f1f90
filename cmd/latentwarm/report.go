package main

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/hupe1980/latentset"
)

type failure struct {
	Index uint32 `json:"index"`
	Video string `json:"video"`
	Error string `json:"error"`
}

type summary struct {
	RunID          string    `json:"run_id"`
	Samples        int       `json:"samples"`
	Cached         []uint32  `json:"cached"`
	Computed       []uint32  `json:"computed"`
	Failed         []failure `json:"failed"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
}

type sampleSet interface {
	Len() int
	Video(i int) string
}

func newSummary(runID string, ds sampleSet, r *latentset.WarmReport) summary {
	s := summary{
		RunID:          runID,
		Samples:        ds.Len(),
		Cached:         r.Cached.ToArray(),
		Computed:       r.Computed.ToArray(),
		Failed:         []failure{},
		ElapsedSeconds: r.Elapsed.Seconds(),
	}
	for _, i := range r.Failed.ToArray() {
		f := failure{Index: i, Video: ds.Video(int(i))}
		if err := r.Errors[i]; err != nil {
			f.Error = err.Error()
		}
		s.Failed = append(s.Failed, f)
	}
	return s
}

// writeReport writes s as indented JSON to path, or to stdout when path is empty.
func writeReport(path string, s summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
