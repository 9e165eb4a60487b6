package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"limslite-service/internal/pkg/exceptions"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPutter struct {
	bucket string
	object string
	body   []byte
	opts   minio.PutObjectOptions
	err    error
}

func (p *recordingPutter) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if p.err != nil {
		return minio.UploadInfo{}, p.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	p.bucket, p.object, p.body, p.opts = bucketName, objectName, body, opts
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func TestObjectName(t *testing.T) {
	receivedAt := time.Date(2023, 6, 15, 23, 30, 0, 0, time.FixedZone("", -3*3600))
	assert.Equal(t, "2023/06/16/MSG-1.hl7", ObjectName("MSG-1", receivedAt))
}

func TestMinioArchiver_Archive(t *testing.T) {
	putter := &recordingPutter{}
	archiver := &minioArchiver{Client: putter, BucketName: "limslite-hl7-archive", Log: zap.NewNop()}

	name, err := archiver.Archive(context.Background(), "MSG-1", time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC), []byte("MSH|^~\\&|"))

	require.NoError(t, err)
	assert.Equal(t, "2023/06/15/MSG-1.hl7", name)
	assert.Equal(t, "limslite-hl7-archive", putter.bucket)
	assert.Equal(t, []byte("MSH|^~\\&|"), putter.body)
	assert.Equal(t, "x-application/hl7-v2+er7", putter.opts.ContentType)
}

func TestMinioArchiver_ArchiveFailure(t *testing.T) {
	archiver := &minioArchiver{Client: &recordingPutter{err: errors.New("bucket gone")}, BucketName: "b", Log: zap.NewNop()}

	_, err := archiver.Archive(context.Background(), "MSG-1", time.Now(), []byte("x"))

	assert.True(t, exceptions.IsKind(err, exceptions.KindIntegration))
}
