package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/utils"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type minioArchiver struct {
	Client     objectPutter
	BucketName string
	Log        *zap.Logger
}

func NewMinioArchiver(client *minio.Client, bucketName string, logger *zap.Logger) contracts.MessageArchiver {
	return &minioArchiver{
		Client:     client,
		BucketName: bucketName,
		Log:        logger,
	}
}

// ObjectName lays archived messages out by the day they were received.
func ObjectName(controlID string, receivedAt time.Time) string {
	return fmt.Sprintf(constvars.ArchiveObjectNameFormat, receivedAt.UTC().Format(constvars.ArchiveObjectDateLayout), controlID)
}

func (a *minioArchiver) Archive(ctx context.Context, controlID string, receivedAt time.Time, payload []byte) (string, error) {
	requestID := utils.RequestIDFromContext(ctx)
	objectName := ObjectName(controlID, receivedAt)

	_, err := a.Client.PutObject(
		ctx,
		a.BucketName,
		objectName,
		bytes.NewReader(payload),
		int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: constvars.MIMEApplicationHL7,
		},
	)
	if err != nil {
		a.Log.Error("minioArchiver.Archive error putting object",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketKey, a.BucketName),
			zap.String(constvars.LoggingObjectKey, objectName),
			zap.Error(err),
		)
		return "", exceptions.ErrMinioCreateObject(err, a.BucketName)
	}

	a.Log.Info("minioArchiver.Archive succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBucketKey, a.BucketName),
		zap.String(constvars.LoggingObjectKey, objectName),
	)
	return objectName, nil
}
