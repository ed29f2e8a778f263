package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	key, err := CleanKey("/products/wagyu/wagyu_0.jpg")
	require.NoError(t, err)
	assert.Equal(t, "products/wagyu/wagyu_0.jpg", key)

	for _, bad := range []string{"", "../etc/passwd", "products/../../x", "a//b"} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestLocalPutDelete(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "/media")
	require.NoError(t, err)

	url, err := l.Put(context.Background(), "company/hero_front.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/media/company/hero_front.jpg", url)

	data, err := os.ReadFile(filepath.Join(root, "company", "hero_front.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, l.Delete(context.Background(), "company/hero_front.jpg"))
	require.NoError(t, l.Delete(context.Background(), "company/hero_front.jpg"), "missing file is not an error")
	_, err = os.Stat(filepath.Join(root, "company", "hero_front.jpg"))
	assert.True(t, os.IsNotExist(err))
}

type fakeObjects struct {
	puts    map[string][]byte
	deleted []string
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	f.puts[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3PutUsesBucketKeyAndPublicURL(t *testing.T) {
	fake := &fakeObjects{puts: map[string][]byte{}}
	s := newS3WithClient(fake, "media", "https://cdn.example.com", nil)

	url, err := s.Put(context.Background(), "products/pork/pork_1.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/products/pork/pork_1.jpg", url)
	assert.Equal(t, []byte("x"), fake.puts["products/pork/pork_1.jpg"])

	require.NoError(t, DeleteAll(context.Background(), s, "a.jpg", "", "b.jpg"))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, fake.deleted)
}
