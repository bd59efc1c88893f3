// uploader is the default AWS v1 upload handler, mirroring downloaded
// episodes to an S3 bucket.
package uploader

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sa6mwa/castsdown/internal/app/humanreadable"
	"github.com/sa6mwa/castsdown/internal/app/ports"
	"github.com/sa6mwa/castsdown/internal/infra/adapters/logger"
)

var (
	ErrNilPointerRequest error = errors.New("received nil pointer as request")
	ErrFilenameMissing   error = errors.New("empty or missing filename given")
	ErrBucketMissing     error = errors.New("empty or missing bucket given")
)

// Uploader configuration.
type Config struct {
	// Profile and Region of the AWS session, empty means the SDK
	// defaults (environment, shared config).
	Profile string
	Region  string
	// Prefix is prepended to every key that does not already start
	// with it, e.g "podcasts/".
	Prefix string
	// Endpoint overrides the S3 endpoint (S3 compatible stores).
	Endpoint string
}

type forUploading struct {
	config   Config
	session  *session.Session
	uploader *s3manager.Uploader
}

func New(config *Config) (ports.ForUploading, error) {
	c := Config{}
	if config != nil {
		c = *config
	}
	awsConfig := aws.Config{}
	if c.Region != "" {
		awsConfig.Region = aws.String(c.Region)
	}
	if c.Endpoint != "" {
		awsConfig.Endpoint = aws.String(c.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	s, err := session.NewSessionWithOptions(session.Options{
		Profile:           c.Profile,
		Config:            awsConfig,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}
	return &forUploading{
		config:   c,
		session:  s,
		uploader: s3manager.NewUploader(s),
	}, nil
}

func getContentType(filename string) (contentType string, err error) {
	mimetype.SetLimit(1024 * 1024)
	mimeType, err := mimetype.DetectFile(filename)
	if err != nil {
		return "", err
	}
	return mimeType.String(), nil
}

// Key returns the object key for a local file: to if not empty,
// otherwise the base name of from, prefixed with the configured
// prefix.
func Key(prefix, to, from string) string {
	key := strings.TrimSpace(to)
	if key == "" {
		key = filepath.Base(from)
	}
	if prefix != "" && !strings.HasPrefix(key, prefix) {
		key = path.Join(prefix, key)
	}
	return key
}

// Upload r.From as key r.To to bucket r.Store. If ContentType is
// empty in r, function will attempt to detect the content-type of the
// file in the r.From field.
func (u *forUploading) Upload(ctx context.Context, r *ports.ForUploadingRequest) error {
	l := logger.FromContext(ctx)
	if r == nil {
		return ErrNilPointerRequest
	}
	if strings.TrimSpace(r.From) == "" {
		return ErrFilenameMissing
	}
	if strings.TrimSpace(r.Store) == "" {
		return ErrBucketMissing
	}
	if strings.TrimSpace(r.ContentType) == "" {
		var err error
		r.ContentType, err = getContentType(r.From)
		if err != nil {
			return err
		}
	}
	r.To = Key(u.config.Prefix, r.To, r.From)
	if r.StorageClass == "" {
		r.StorageClass = "STANDARD"
	}
	s3path := "s3://" + path.Join(r.Store, r.To)
	fi, err := os.Stat(r.From)
	if err != nil {
		return err
	}
	l.Info("Uploading to S3", "file", r.From, "to", s3path, "storageClass", r.StorageClass, "size", fi.Size(), "humanSize", humanreadable.IEC(fi.Size()))
	f, err := os.Open(r.From)
	if err != nil {
		return err
	}
	defer f.Close()
	result, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       aws.String(r.Store),
		Key:          aws.String(r.To),
		ContentType:  aws.String(r.ContentType),
		Body:         f,
		StorageClass: aws.String(r.StorageClass),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok {
			switch awsErr.Code() {
			case s3.ErrCodeNoSuchBucket, "NotFound":
				return errors.Join(ports.ErrNotFound, err)
			}
		}
		return err
	}
	l.Info("Upload succeeded", "location", result.Location)
	return nil
}
