package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":             "photo.jpg",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\my pic.png`: "my_pic.png",
		"ünïcode!.gif":          "ncode.gif",
		"..":                    "",
		".hidden":               "hidden",
	}
	for in, want := range cases {
		require.Equal(t, want, SafeFilename(in), in)
	}
}

func TestNewImageKey(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	key := NewImageKey("shirt.png", now)
	require.True(t, strings.HasPrefix(key, "donations/2024/03/"), key)
	require.True(t, strings.HasSuffix(key, "-shirt.png"), key)
	require.NotEqual(t, key, NewImageKey("shirt.png", now))
}

func TestNewImageKey_FallbackName(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"照片.jpg":     "-image.jpg",
		"照片":         "-image",
		"///":        "-image",
		"фото 1.PNG": "-1.PNG",
		"my pic.png": "-my_pic.png",
	}
	for in, suffix := range cases {
		key := NewImageKey(in, now)
		require.True(t, strings.HasSuffix(key, suffix), "%s -> %s", in, key)
	}
}

func TestFileStore_SaveNonLatinName(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	key, err := fs.Save(context.Background(), "照片", strings.NewReader("img"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(key, "-image"), key)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	require.Equal(t, "img", string(data))
}

func TestFileStore_Save(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	key, err := fs.Save(context.Background(), "toy.jpg", strings.NewReader("bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	require.Equal(t, "bytes", string(data))
}

func TestFileStore_CancelledContext(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fs.Save(ctx, "toy.jpg", strings.NewReader("x"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("  ")
	require.Error(t, err)
}

type fakePutter struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		_, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Store_Save(t *testing.T) {
	fp := &fakePutter{}
	s := &S3Store{client: fp, bucket: "images", now: time.Now}

	key, err := s.Save(context.Background(), "book.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.Equal(t, "images", aws.ToString(fp.in.Bucket))
	require.Equal(t, key, aws.ToString(fp.in.Key))
	require.Equal(t, "image/png", aws.ToString(fp.in.ContentType))
}

func TestS3Store_SaveError(t *testing.T) {
	s := &S3Store{client: &fakePutter{err: errors.New("denied")}, bucket: "images", now: time.Now}
	_, err := s.Save(context.Background(), "book.png", strings.NewReader("png"))
	require.ErrorContains(t, err, "denied")
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Options{})
	require.Error(t, err)
}
