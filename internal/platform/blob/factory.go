package blob

import (
	"context"
	"fmt"
)

type Options struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open elige el driver. Vacío = memory.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem:
		return NewFilesystem(opts.FSRoot)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", opts.Driver)
	}
}
