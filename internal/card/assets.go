package card

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
)

// Template asset names resolved through the AssetLoader.
const (
	TemplateFront = "credential-front.png"
	TemplateBack  = "credential-back.png"
)

// AssetLoader resolves card template images by name.
type AssetLoader interface {
	Load(ctx context.Context, name string) (image.Image, error)
}

// DirLoader loads template images from a directory on disk.
type DirLoader struct {
	dir string
}

func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{dir: dir}
}

func (l *DirLoader) Load(_ context.Context, name string) (image.Image, error) {
	f, err := os.Open(filepath.Join(l.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", name, err)
	}
	return img, nil
}
