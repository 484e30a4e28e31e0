package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/sendrec/showcase/internal/playback"
	"github.com/sendrec/showcase/internal/validate"
	"gopkg.in/yaml.v3"
)

type fileCatalog struct {
	Hero      *playback.HeroSources                 `yaml:"hero"`
	Carousels map[string][]playback.VideoDescriptor `yaml:"carousels"`
}

// FileSource serves descriptors from a static YAML file loaded once at startup.
type FileSource struct {
	hero      *playback.HeroSources
	carousels map[string][]playback.VideoDescriptor
}

func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseFile(data)
}

func ParseFile(data []byte) (*FileSource, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for name, videos := range fc.Carousels {
		if msg := validate.CarouselName(name); msg != "" {
			return nil, fmt.Errorf("carousel %q: %s", name, msg)
		}
		if err := validateDescriptors(name, videos); err != nil {
			return nil, err
		}
	}
	if fc.Hero != nil {
		if err := validateHero(*fc.Hero); err != nil {
			return nil, err
		}
	}
	if fc.Carousels == nil {
		fc.Carousels = map[string][]playback.VideoDescriptor{}
	}
	return &FileSource{hero: fc.Hero, carousels: fc.Carousels}, nil
}

func (f *FileSource) Carousel(ctx context.Context, name string) ([]playback.VideoDescriptor, error) {
	videos, ok := f.carousels[name]
	if !ok {
		return nil, fmt.Errorf("carousel %q: %w", name, ErrCarouselNotFound)
	}
	out := make([]playback.VideoDescriptor, len(videos))
	copy(out, videos)
	return out, nil
}

func (f *FileSource) Hero(ctx context.Context) (playback.HeroSources, error) {
	if f.hero == nil {
		return playback.HeroSources{}, ErrHeroNotConfigured
	}
	return *f.hero, nil
}
