package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket is an in-memory stand-in for the S3 API and the upload manager.
type fakeBucket struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	err      error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: make(map[string][]byte), pageSize: 2}
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	var matched []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			matched = append(matched, key)
		}
	}
	slices.Sort(matched)

	start := 0
	if in.ContinuationToken != nil {
		for i, key := range matched {
			if key == aws.ToString(in.ContinuationToken) {
				start = i
				break
			}
		}
	}

	end := min(start+f.pageSize, len(matched))
	out := &s3.ListObjectsV2Output{}
	for _, key := range matched[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if end < len(matched) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(matched[end])
	}

	return out, nil
}

func (f *fakeBucket) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = body

	return &manager.UploadOutput{Key: in.Key}, nil
}

func newFakeS3Store(bucket *fakeBucket) *S3Store {
	return &S3Store{
		cfg:      S3Config{BucketName: "chat", Prefix: "anonchat/"},
		client:   bucket,
		uploader: bucket,
	}
}

func TestS3Store_GetSetList(t *testing.T) {
	ctx := context.Background()
	bucket := newFakeBucket()
	store := newFakeS3Store(bucket)

	_, err := store.Get(ctx, "msg_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, key := range []string{"msg_3_c", "msg_1_a", "msg_2_b", "userId"} {
		require.NoError(t, store.Set(ctx, key, []byte(key)))
	}

	assert.Contains(t, bucket.objects, "anonchat/msg_1_a")

	value, err := store.Get(ctx, "msg_2_b")
	require.NoError(t, err)
	assert.Equal(t, []byte("msg_2_b"), value)

	// Three matches with a page size of two exercise the paginator.
	keys, err := store.List(ctx, "msg_")
	require.NoError(t, err)
	assert.Equal(t, []string{"msg_1_a", "msg_2_b", "msg_3_c"}, keys)
}

func TestS3Store_ErrorsAreClassified(t *testing.T) {
	ctx := context.Background()
	bucket := newFakeBucket()
	bucket.err = errors.New("service unavailable")
	store := newFakeS3Store(bucket)

	_, err := store.Get(ctx, "userId")
	assert.ErrorIs(t, err, ErrRead)

	err = store.Set(ctx, "userId", []byte("x"))
	assert.ErrorIs(t, err, ErrWrite)

	_, err = store.List(ctx, "msg_")
	assert.ErrorIs(t, err, ErrRead)
}
