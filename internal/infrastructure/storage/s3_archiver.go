// Package storage guarda copias de los PDFs generados en un bucket S3.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appbilling "github.com/jhoicas/nordiqua-api/internal/application/billing"
	"github.com/jhoicas/nordiqua-api/pkg/config"
)

var _ appbilling.PDFArchiver = (*S3Archiver)(nil)

// putObjectAPI subconjunto del cliente S3 que usa el archivador.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver implementa billing.PDFArchiver sobre AWS S3 (o compatible).
type S3Archiver struct {
	client    putObjectAPI
	bucket    string
	keyPrefix string
}

// NewS3Archiver construye el archivador. Sin claves explícitas se usa la cadena de credenciales por defecto.
func NewS3Archiver(ctx context.Context, cfg config.StorageConfig) (*S3Archiver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket vacío")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: cargar configuración AWS: %w", err)
	}
	return newS3Archiver(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.KeyPrefix), nil
}

func newS3Archiver(client putObjectAPI, bucket, keyPrefix string) *S3Archiver {
	if keyPrefix != "" && !strings.HasSuffix(keyPrefix, "/") {
		keyPrefix += "/"
	}
	return &S3Archiver{client: client, bucket: bucket, keyPrefix: keyPrefix}
}

// Archive sube data con la clave keyPrefix + key.
func (a *S3Archiver) Archive(ctx context.Context, key string, data []byte) error {
	fullKey := a.keyPrefix + strings.TrimPrefix(key, "/")
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(fullKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/pdf"),
		ContentLength: int64(len(data)),
	})
	if err != nil {
		return fmt.Errorf("storage: subir %s: %w", fullKey, err)
	}
	return nil
}
