// Package latentset provides a text-to-video training dataset that serves
// prompt/latent pairs and caches every encoded video on disk.
//
// A Dataset reads a captions file and a videos file (one entry per line),
// checks that every video exists, and pairs them positionally. The first
// access to a sample decodes the video through a preprocess.Pipeline, maps
// pixel values to [-1, 1], encodes the [1, C, F, H, W] batch with the
// configured EncodeFunc and stores the resulting [C, F, H, W] latent. Every
// later access reads the stored latent and never touches the video or the
// encoder again.
//
// # Quick Start
//
//	pipeline, _ := preprocess.NewResizePipeline(preprocess.ResizeConfig{
//	    MaxFrames: 49, Height: 480, Width: 720,
//	}, ffmpeg.New())
//
//	ds, _ := latentset.New("/data", "prompts.txt", "videos.txt", pipeline,
//	    latentset.WithEncoder(vae.Encode),
//	)
//	rec, _ := ds.At(ctx, 0)
//	fmt.Println(rec.Prompt, rec.Metadata.NumFrames)
//
// # Cache Layout
//
// By default the latent of <dir>/<stem>.<ext> is written to
// <dir>/latent/<stem>.pt using the codec package's blob format. Entries are
// never invalidated: delete the file to force recomputation. Other backends
// (MinIO, S3, in-memory) plug in through WithCache and latentcache.BlobCache.
//
// # Buckets
//
// A preprocess.BucketPipeline fits each video to the nearest of a fixed set
// of (frames, height, width) buckets. Batches of equally shaped latents are
// formed by sampler.BucketSampler and passed back through Get as Prefetched
// queries, which are returned unchanged.
//
// # Warming
//
// Warm computes missing latents ahead of training with bounded parallelism
// and an optional encode rate limit, and reports which indices were already
// cached, computed or failed. The cmd/latentwarm tool wraps it.
package latentset
