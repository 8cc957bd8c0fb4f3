package blobstore_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"resume-management-backend/pkg/blobstore"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := blobstore.NewLocalStore(dir)
	require.NoError(t, err)

	ref, err := store.Put(ctx, []byte("%PDF-1.4 data"), ".pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".pdf"))
	assert.Equal(t, dir, filepath.Dir(ref))

	other, err := store.Put(ctx, []byte("x"), "pdf")
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)

	data, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 data"), data)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, ref), blobstore.ErrNotFound)
}

func TestLocalStore_RejectsForeignReferences(t *testing.T) {
	ctx := context.Background()
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"", "/etc/passwd", "../secret.pdf", "other/file.pdf"} {
		_, err := store.Get(ctx, ref)
		assert.ErrorIs(t, err, blobstore.ErrInvalidReference, ref)
		assert.ErrorIs(t, store.Delete(ctx, ref), blobstore.ErrInvalidReference, ref)
	}
}

type fakeS3 struct {
	objects map[string][]byte
	ctype   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, ctype: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = data
	f.ctype[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store, err := blobstore.NewS3Store(fake, "cv-bucket", "resumes/")
	require.NoError(t, err)

	ref, err := store.Put(ctx, []byte("pdf bytes"), ".pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "s3://cv-bucket/resumes/"))

	key := strings.TrimPrefix(ref, "s3://cv-bucket/")
	assert.Equal(t, "application/pdf", fake.ctype[key])

	data, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestS3Store_RejectsOtherBuckets(t *testing.T) {
	store, err := blobstore.NewS3Store(newFakeS3(), "cv-bucket", "resumes/")
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "s3://elsewhere/resumes/a.pdf")
	assert.ErrorIs(t, err, blobstore.ErrInvalidReference)
	_, err = store.Get(context.Background(), "resumes/a.pdf")
	assert.ErrorIs(t, err, blobstore.ErrInvalidReference)

	_, err = blobstore.NewS3Store(newFakeS3(), "", "")
	assert.Error(t, err)
}
