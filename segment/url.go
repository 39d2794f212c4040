package segment

import (
	"context"
	"net/url"
	"strings"

	verrors "github.com/vortex-db/vortex/internal/errors"
	"github.com/vortex-db/vortex/internal/storage"
)

// ParseSourceURL recognizes s3://, gs://, az:// and file:// schemes and
// constructs the matching storage.Backend plus the object key/path within
// it, mirroring the teacher's NewFromConfig dispatch-by-scheme but keyed
// off a single URL string rather than a pre-populated config struct (the
// shape external callers like a CLI or FFI binding actually have on
// hand).
func ParseSourceURL(ctx context.Context, raw string) (storage.Backend, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", verrors.InvalidArgument("segment.parse_source_url", err.Error())
	}
	key := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "file":
		path := u.Path
		if u.Host != "" {
			path = u.Host + u.Path
		}
		return storage.Local(path), "", nil
	case "s3":
		backend, err := storage.NewS3Backend(&storage.S3Config{Bucket: u.Host})
		return backend, key, err
	case "gs":
		backend, err := storage.NewGCSBackend(ctx, &storage.GCSConfig{BucketName: u.Host})
		return backend, key, err
	case "az":
		backend, err := storage.NewAzureBackend(ctx, &storage.AzureConfig{ContainerName: u.Host})
		return backend, key, err
	default:
		return nil, "", verrors.InvalidArgument("segment.parse_source_url", "unrecognized scheme: "+u.Scheme)
	}
}
