// Package s3 implements blobstore.Store on Amazon S3 using aws-sdk-go-v2.
//
// Small latents are written with a single PutObject; blobs at or above the
// multipart threshold go through the s3 manager uploader. Both are atomic from
// a reader's point of view: an object only becomes visible once complete.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "latents/")
package s3
