package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// S3Options configures an S3Store
type S3Options struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	// Endpoint is set for S3-compatible stores
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
	// Prefix is prepended to every object key
	Prefix string `yaml:"prefix"`
	// PublicURL is the base URL objects are served from; defaults to the
	// virtual-hosted bucket URL
	PublicURL string `yaml:"public_url"`
}

// objectDeleter is the part of the s3 client used by S3Store
type objectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps objects in an S3 bucket
type S3Store struct {
	client    objectDeleter
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Store creates an S3Store using the default AWS credential chain
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket must be set")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}
	if opts.Region != "" {
		cfg.Region = opts.Region
	}

	var s3Options []func(*s3.Options)
	if opts.Endpoint != "" {
		s3Options = append(
			s3Options, func(o *s3.Options) {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			},
		)
	}
	if opts.UsePathStyle {
		s3Options = append(
			s3Options, func(o *s3.Options) {
				o.UsePathStyle = true
			},
		)
	}
	return newS3Store(s3.NewFromConfig(cfg, s3Options...), opts, cfg.Region), nil
}

func newS3Store(client objectDeleter, opts S3Options, region string) *S3Store {
	publicURL := opts.PublicURL
	if publicURL == "" {
		switch {
		case opts.Endpoint != "":
			publicURL = joinURL(opts.Endpoint, opts.Bucket)
		case region != "":
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, region)
		default:
			publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", opts.Bucket)
		}
	}
	return &S3Store{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    strings.Trim(opts.Prefix, "/"),
		publicURL: publicURL,
	}
}

func (s *S3Store) key(path string) string {
	path = strings.TrimLeft(path, "/")
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

// URL implements the Store interface
func (s *S3Store) URL(path string) string {
	if isAbsolute(path) {
		return path
	}
	return joinURL(s.publicURL, s.key(path))
}

// Delete implements the Store interface
func (s *S3Store) Delete(ctx context.Context, path string) error {
	if isAbsolute(path) {
		base := strings.TrimRight(s.publicURL, "/") + "/"
		if !strings.HasPrefix(path, base) {
			return nil
		}
		path = strings.TrimPrefix(strings.TrimPrefix(path, base), s.prefix+"/")
	}
	_, err := s.client.DeleteObject(
		ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(path)),
		},
	)
	return errors.Wrapf(err, "could not delete s3 object '%s'", path)
}
