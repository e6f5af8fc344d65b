package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func pngUpload(name string) Upload {
	return Upload{Filename: name, ContentType: "application/octet-stream", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)}
}

type fakeS3 struct {
	input   *s3.PutObjectInput
	body    []byte
	err     error
	deleted *s3.DeleteObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

func TestSniffImage(t *testing.T) {
	up, err := sniffImage(pngUpload("a.png"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", up.ContentType)

	data, err := io.ReadAll(up.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data, "sniffing must not consume the body")

	_, err = sniffImage(Upload{Filename: "a.txt", Body: strings.NewReader("hello world")})
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = sniffImage(Upload{Filename: "empty.png", Body: strings.NewReader("")})
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = sniffImage(Upload{Filename: "nil.png"})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestObjectNameAndFolder(t *testing.T) {
	name := objectName("Burger.PNG")
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, name, 36+4)

	assert.Len(t, objectName("noext"), 36)
	assert.Equal(t, "food", cleanFolder("food"))
	assert.Equal(t, "etc/passwd", cleanFolder("../../etc/passwd"))
	assert.Equal(t, "misc", cleanFolder(""))
}

func TestS3ImageStore_Put(t *testing.T) {
	fake := &fakeS3{}
	store := &S3ImageStore{client: fake, bucket: "images", publicBaseURL: "https://cdn.example.com", maxBytes: 1024}

	url, err := store.Put(context.Background(), "food", pngUpload("burger.png"))
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	key := aws.ToString(fake.input.Key)
	assert.True(t, strings.HasPrefix(key, "food/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "images", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(len(pngBytes)), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, pngBytes, fake.body)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
}

func TestS3ImageStore_PutErrors(t *testing.T) {
	fake := &fakeS3{err: errors.New("bucket gone")}
	store := &S3ImageStore{client: fake, bucket: "images", publicBaseURL: "https://cdn.example.com"}

	_, err := store.Put(context.Background(), "food", pngUpload("burger.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")

	_, err = store.Put(context.Background(), "food", Upload{Filename: "x.txt", Body: strings.NewReader("text")})
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	small := &S3ImageStore{client: &fakeS3{}, bucket: "images", publicBaseURL: "https://cdn", maxBytes: 8}
	_, err = small.Put(context.Background(), "food", pngUpload("big.png"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestS3ImageStore_Delete(t *testing.T) {
	fake := &fakeS3{}
	store := &S3ImageStore{client: fake, bucket: "images", publicBaseURL: "https://cdn.example.com"}

	require.NoError(t, store.Delete(context.Background(), "https://cdn.example.com/food/a.png"))
	require.NotNil(t, fake.deleted)
	assert.Equal(t, "images", aws.ToString(fake.deleted.Bucket))
	assert.Equal(t, "food/a.png", aws.ToString(fake.deleted.Key))

	fake.deleted = nil
	require.NoError(t, store.Delete(context.Background(), "https://elsewhere.example/food/a.png"))
	assert.Nil(t, fake.deleted, "foreign urls are ignored")

	fake.err = errors.New("denied")
	assert.Error(t, store.Delete(context.Background(), "https://cdn.example.com/food/a.png"))
}

func TestNewS3ImageStore_WiresConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(_ context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(_ aws.Config, optFns ...func(*s3.Options)) s3ObjectAPI {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &fakeS3{}
	}

	store, err := NewS3ImageStore(context.Background(), S3Options{
		Bucket:       "images",
		Region:       "eu-west-1",
		Endpoint:     "http://minio:9000/",
		AccessKey:    "key",
		SecretKey:    "secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://minio:9000/images", store.publicBaseURL)

	_, err = NewS3ImageStore(context.Background(), S3Options{})
	require.Error(t, err)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}
	_, err = NewS3ImageStore(context.Background(), S3Options{Bucket: "images"})
	require.Error(t, err)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(S3Options{PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://images.s3.us-east-1.amazonaws.com", publicBaseURL(S3Options{Bucket: "images", Region: "us-east-1"}))
}

func TestLocalImageStore_Put(t *testing.T) {
	root := t.TempDir()
	store := NewLocalImageStore(root, "http://localhost:8080/", 1024)

	url, err := store.Put(context.Background(), "category", pngUpload("pizza.png"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/category/"))

	name := strings.TrimPrefix(url, "http://localhost:8080/uploads/category/")
	data, err := os.ReadFile(filepath.Join(root, "category", name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestLocalImageStore_RejectsOversizedAndNonImages(t *testing.T) {
	root := t.TempDir()
	store := NewLocalImageStore(root, "http://localhost", 8)

	_, err := store.Put(context.Background(), "food", pngUpload("big.png"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	entries, err := os.ReadDir(filepath.Join(root, "food"))
	require.NoError(t, err)
	assert.Empty(t, entries, "oversized uploads must be removed")

	_, err = store.Put(context.Background(), "food", Upload{Filename: "a.txt", Body: strings.NewReader("plain text")})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestLocalImageStore_Delete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalImageStore(root, "http://localhost:8080", 1024)

	url, err := store.Put(context.Background(), "food", pngUpload("pizza.png"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), url))

	entries, err := os.ReadDir(filepath.Join(root, "food"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, store.Delete(context.Background(), url), "deleting twice is not an error")
	require.NoError(t, store.Delete(context.Background(), "https://cdn.example/food/x.png"))
}
