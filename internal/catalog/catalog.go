package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendrec/showcase/internal/playback"
	"github.com/sendrec/showcase/internal/validate"
)

var (
	ErrCarouselNotFound  = errors.New("carousel not found")
	ErrHeroNotConfigured = errors.New("hero video not configured")
)

// Source supplies the video descriptors pages mount carousels and the hero video with.
type Source interface {
	Carousel(ctx context.Context, name string) ([]playback.VideoDescriptor, error)
	Hero(ctx context.Context) (playback.HeroSources, error)
}

func validateDescriptors(name string, videos []playback.VideoDescriptor) error {
	if msg := validate.CarouselSize(len(videos)); msg != "" {
		return fmt.Errorf("carousel %q: %s", name, msg)
	}
	for i, v := range videos {
		if msg := validate.MediaURL(v.URL, "url"); msg != "" {
			return fmt.Errorf("carousel %q video %d: %s", name, i, msg)
		}
		if msg := validate.Title(v.Title); msg != "" {
			return fmt.Errorf("carousel %q video %d: %s", name, i, msg)
		}
		if v.Thumbnail != "" {
			if msg := validate.MediaURL(v.Thumbnail, "thumbnail"); msg != "" {
				return fmt.Errorf("carousel %q video %d: %s", name, i, msg)
			}
		}
	}
	return nil
}

func validateHero(h playback.HeroSources) error {
	if msg := validate.MediaURL(h.LowRes, "low_res"); msg != "" {
		return fmt.Errorf("hero: %s", msg)
	}
	if msg := validate.MediaURL(h.HighRes, "high_res"); msg != "" {
		return fmt.Errorf("hero: %s", msg)
	}
	return nil
}
