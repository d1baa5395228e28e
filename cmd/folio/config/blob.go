package config

import (
	"context"

	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/folio-cms/folio/blob"
)

// Blob drivers
const (
	BlobDriverLocal = "local"
	BlobDriverS3    = "s3"
)

// blobConf configures where uploaded files and images live
//
// YAML example:
//
//	blob:
//	  driver: s3
//	  s3:
//	    bucket: folio-assets
//	    region: eu-central-1
type blobConf struct {
	Driver string         `yaml:"driver"`
	Local  localBlobConf  `yaml:"local"`
	S3     blob.S3Options `yaml:"s3"`
}

type localBlobConf struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

func (c *blobConf) validate() error {
	switch c.Driver {
	case "":
		c.Driver = BlobDriverLocal
		return c.validate()
	case BlobDriverLocal:
		if c.Local.Dir != "" && !fileutils.FileExists(c.Local.Dir) {
			return errors.Errorf("error in blob conf: directory '%s' does not exist", c.Local.Dir)
		}
	case BlobDriverS3:
		if c.S3.Bucket == "" {
			return errors.New("error in blob conf: s3.bucket must be specified")
		}
	default:
		return errors.Errorf("error in blob conf: unknown driver '%s'", c.Driver)
	}
	return nil
}

var defaultBlobConf = blobConf{
	Driver: BlobDriverLocal,
	Local: localBlobConf{
		BaseURL: blob.DefaultLocalBaseURL,
	},
}

// LoadBlobStore creates the blob.Store for the passed conf; a local store
// without a directory resolves urls but never deletes files
func LoadBlobStore(ctx context.Context, c blobConf) (blob.Store, error) {
	if c.Driver == BlobDriverS3 {
		return blob.NewS3Store(ctx, c.S3)
	}
	return blob.NewLocalStore(c.Local.Dir, c.Local.BaseURL), nil
}
