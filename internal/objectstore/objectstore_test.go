package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "products/p1.jpg", ProductImagePath("p1"))
	assert.Equal(t, "profile_images/u1.jpg", ProfileImagePath("u1"))
}

func TestMemory_Put(t *testing.T) {
	m := NewMemory("http://files.local/")
	url, err := m.Put(context.Background(), "products/p1.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/products/p1.jpg", url)

	o, ok := m.Get("products/p1.jpg")
	require.True(t, ok)
	assert.Equal(t, "jpeg", string(o.Data))
	assert.Equal(t, "image/jpeg", o.ContentType)
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3_Put(t *testing.T) {
	fake := &fakeS3{}
	s := newS3(fake, "stockyng", "http://minio:9000/stockyng/")

	url, err := s.Put(context.Background(), "profile_images/u1.jpg", strings.NewReader("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/stockyng/profile_images/u1.jpg", url)
	assert.Equal(t, "stockyng", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "profile_images/u1.jpg", aws.ToString(fake.in.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.in.ContentType))
	assert.Equal(t, "img", fake.body)
}

func TestS3_PutError(t *testing.T) {
	s := newS3(&fakeS3{err: errors.New("denied")}, "b", "http://x")
	_, err := s.Put(context.Background(), "k", strings.NewReader(""), "")
	assert.ErrorContains(t, err, "denied")
}
