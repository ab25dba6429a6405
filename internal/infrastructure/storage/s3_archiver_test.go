package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestArchive_ClaveConPrefijo(t *testing.T) {
	fake := &fakeS3{}
	a := newS3Archiver(fake, "facturas", "pdf")

	require.NoError(t, a.Archive(context.Background(), "owner-1/facture-INV-2024-001.pdf", []byte("%PDF")))
	assert.Equal(t, "facturas", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "pdf/owner-1/facture-INV-2024-001.pdf", aws.ToString(fake.input.Key))
	assert.Equal(t, "application/pdf", aws.ToString(fake.input.ContentType))
	assert.Equal(t, []byte("%PDF"), fake.body)
}

func TestArchive_PropagaError(t *testing.T) {
	a := newS3Archiver(&fakeS3{err: errors.New("AccessDenied")}, "facturas", "")
	err := a.Archive(context.Background(), "x.pdf", []byte("%PDF"))
	assert.ErrorContains(t, err, "AccessDenied")
}
