// Package minio implements blobstore.Store on MinIO and other S3-compatible servers
// using github.com/minio/minio-go/v7.
package minio
