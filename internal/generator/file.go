package generator

import (
	"context"
	"fmt"
	"os"
)

// File replays a specification stored on disk. It is used to gate a
// previously captured generation.
type File struct {
	Path string
}

// Generate implements Generator.
func (f *File) Generate(ctx context.Context, _ Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading specification: %w", err)
	}
	return data, nil
}

// Name implements Generator.
func (f *File) Name() string { return "file:" + f.Path }
