package filestore

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is the smallest prefix filetype recognizes as PNG.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestSniffImage(t *testing.T) {
	img, err := SniffImage(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, "png", img.Extension)
	assert.Equal(t, "PNG", img.PDFType)

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F'}
	img, err = SniffImage(jpeg)
	require.NoError(t, err)
	assert.Equal(t, "JPG", img.PDFType)

	_, err = SniffImage([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = SniffImage(nil)
	assert.Error(t, err)
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "logos/owner-1.png", pngHeader, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/logos/owner-1.png", url)

	data, err := store.Open(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = store.Open(ctx, "/uploads/logos/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Open(ctx, "https://elsewhere.test/logo.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Put(ctx, "../escape.png", pngHeader, "image/png")
	assert.Error(t, err)
}

func TestS3Store_URLs(t *testing.T) {
	client := s3.New(s3.Options{Region: "ap-south-1", Credentials: aws.AnonymousCredentials{}})

	store := NewS3StoreWithClient(client, S3Config{Bucket: "logos", Region: "ap-south-1", KeyPrefix: "billdesk/"})
	assert.Equal(t, "billdesk/a.png", store.objectKey("a.png"))
	assert.Equal(t, "https://logos.s3.ap-south-1.amazonaws.com", store.baseURL)

	custom := NewS3StoreWithClient(client, S3Config{Bucket: "logos", PublicBaseURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com", custom.baseURL)

	_, err := custom.Open(context.Background(), "https://other.example.com/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}
