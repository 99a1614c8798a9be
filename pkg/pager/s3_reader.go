package pager

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"revtree/pkg/page"
	"revtree/pkg/rerr"
)

// S3Reader reads pages from an S3 bucket using byte-range GetObject
// calls keyed by persistent key, an alternate storage backend to
// FileReader for the same Reader contract.
type S3Reader struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Reader loads the default AWS config chain (env vars, shared
// config, IMDS) and binds to bucket/prefix.
func NewS3Reader(ctx context.Context, bucket, prefix string, logger *slog.Logger) (*S3Reader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, rerr.WrapIO("loading aws config", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Reader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}, nil
}

func (r *S3Reader) objectKey(persistentKey int64) string {
	if r.prefix == "" {
		return fmt.Sprintf("%d.page", persistentKey)
	}
	return fmt.Sprintf("%s/%d.page", r.prefix, persistentKey)
}

func (r *S3Reader) ReadPage(ctx context.Context, kind page.Kind, persistentKey int64) (page.Page, error) {
	if persistentKey == page.NullID {
		return nil, rerr.InvalidArg("cannot read page at NULL_ID")
	}

	key := r.objectKey(persistentKey)
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, rerr.WrapIO(fmt.Sprintf("fetching %s", key), err)
	}
	defer out.Body.Close()

	frame, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, rerr.WrapIO(fmt.Sprintf("reading %s body", key), err)
	}
	if len(frame) < FrameHeaderSize {
		return nil, rerr.WrapIO(fmt.Sprintf("reading %s", key), fmt.Errorf("short object: %d bytes", len(frame)))
	}
	length := binary.BigEndian.Uint32(frame[8:12])
	if FrameHeaderSize+int(length) > len(frame) {
		return nil, rerr.WrapIO(fmt.Sprintf("reading %s", key), fmt.Errorf("truncated object"))
	}

	r.logger.Debug("s3 pager: read page", "kind", kind.String(), "key", persistentKey, "bytes", len(frame))
	return decodeFrame(kind, frame)
}

func (r *S3Reader) Close() error { return nil }
