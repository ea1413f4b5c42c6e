package evidence

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"trafficwatch/internal/platform/metrics"
	dErrors "trafficwatch/pkg/domain-errors"
	"trafficwatch/pkg/requestcontext"
)

// fakeS3 records calls so tests can assert what reached the object store.
type fakeS3 struct {
	existing    []string
	listCalls   int
	createCalls int
	policyCalls int
	putCalls    int
	lastKey     string
	lastType    string
	lastPolicy  string
}

func (f *fakeS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	f.listCalls++
	out := &s3.ListBucketsOutput{}
	for _, name := range f.existing {
		out.Buckets = append(out.Buckets, s3types.Bucket{Name: aws.String(name)})
	}
	return out, nil
}

func (f *fakeS3) CreateBucket(_ context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createCalls++
	f.existing = append(f.existing, aws.ToString(params.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutBucketPolicy(_ context.Context, params *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	f.policyCalls++
	f.lastPolicy = aws.ToString(params.Policy)
	return &s3.PutBucketPolicyOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putCalls++
	f.lastKey = aws.ToString(params.Key)
	f.lastType = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

type EvidenceSuite struct {
	suite.Suite
	s3  *fakeS3
	svc *Service
	ctx context.Context
}

func (s *EvidenceSuite) SetupTest() {
	s.s3 = &fakeS3{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.svc = New(s.s3, "violations-bucket", "http://localhost:9000", logger, metrics.New(prometheus.NewRegistry()))
	s.ctx = requestcontext.WithTime(context.Background(), time.UnixMilli(1700000000000).UTC())
}

func TestEvidenceSuite(t *testing.T) {
	suite.Run(t, new(EvidenceSuite))
}

func (s *EvidenceSuite) jpeg() Image {
	data := []byte("jpeg bytes")
	return Image{
		Filename:    "radar-shot.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
		Data:        data,
	}
}

func (s *EvidenceSuite) TestRejectsUnsupportedContentType() {
	img := s.jpeg()
	img.ContentType = "text/plain"

	_, err := s.svc.StoreImage(s.ctx, img)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
	s.Equal("Picture must be JPEG or PNG", dErrors.MessageOf(err))
	s.Zero(s.s3.putCalls, "underlying upload must never run for a bad type")
	s.Zero(s.s3.listCalls)
}

func (s *EvidenceSuite) TestRejectsOversizedImage() {
	img := s.jpeg()
	img.Size = 1_048_577

	_, err := s.svc.StoreImage(s.ctx, img)
	s.Require().Error(err)
	s.Equal("Picture size exceeds 1MB", dErrors.MessageOf(err))
	s.Zero(s.s3.putCalls)
}

func (s *EvidenceSuite) TestAcceptsExactlyOneMiB() {
	img := s.jpeg()
	img.Size = 1_048_576

	_, err := s.svc.StoreImage(s.ctx, img)
	s.Require().NoError(err)
	s.Equal(1, s.s3.putCalls)
}

func (s *EvidenceSuite) TestStoreBuildsKeyAndURL() {
	url, err := s.svc.StoreImage(s.ctx, s.jpeg())
	s.Require().NoError(err)
	s.Equal("1700000000000-radar-shot.jpg", s.s3.lastKey)
	s.Equal("image/jpeg", s.s3.lastType)
	s.Equal("http://localhost:9000/violations-bucket/1700000000000-radar-shot.jpg", url)
}

func (s *EvidenceSuite) TestBucketBootstrapRunsOnce() {
	_, err := s.svc.StoreImage(s.ctx, s.jpeg())
	s.Require().NoError(err)
	_, err = s.svc.StoreImage(s.ctx, s.jpeg())
	s.Require().NoError(err)

	s.Equal(1, s.s3.listCalls, "existence check runs only on the first upload")
	s.Equal(1, s.s3.createCalls)
	s.Equal(1, s.s3.policyCalls)
	s.Contains(s.s3.lastPolicy, `"arn:aws:s3:::violations-bucket/*"`)
	s.Equal(2, s.s3.putCalls)
}

func (s *EvidenceSuite) TestExistingBucketSkipsCreation() {
	s.s3.existing = []string{"violations-bucket"}

	_, err := s.svc.StoreImage(s.ctx, s.jpeg())
	s.Require().NoError(err)
	s.Zero(s.s3.createCalls)
	s.Zero(s.s3.policyCalls)
}
