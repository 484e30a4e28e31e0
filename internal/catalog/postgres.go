package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sendrec/showcase/internal/database"
	"github.com/sendrec/showcase/internal/playback"
)

// ObjectStorage resolves bucket keys to URLs a media element can load.
type ObjectStorage interface {
	MediaURL(ctx context.Context, key string) (string, error)
}

// PostgresSource reads descriptors from the showcase tables. A row names either an
// absolute URL or an object key; keys are presigned on every read.
type PostgresSource struct {
	db      database.DBTX
	storage ObjectStorage
}

func NewPostgresSource(db database.DBTX, s ObjectStorage) *PostgresSource {
	return &PostgresSource{db: db, storage: s}
}

func (p *PostgresSource) Carousel(ctx context.Context, name string) ([]playback.VideoDescriptor, error) {
	rows, err := p.db.Query(ctx,
		`SELECT title, video_url, object_key, thumbnail_key
		 FROM showcase_videos WHERE carousel = $1 ORDER BY position`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("query carousel %q: %w", name, err)
	}
	defer rows.Close()

	var videos []playback.VideoDescriptor
	for rows.Next() {
		var (
			title        string
			videoURL     *string
			objectKey    *string
			thumbnailKey *string
		)
		if err := rows.Scan(&title, &videoURL, &objectKey, &thumbnailKey); err != nil {
			return nil, fmt.Errorf("scan carousel %q: %w", name, err)
		}
		src, err := p.resolve(ctx, videoURL, objectKey)
		if err != nil {
			return nil, fmt.Errorf("carousel %q video %d: %w", name, len(videos), err)
		}
		v := playback.VideoDescriptor{URL: src, Title: title}
		if thumbnailKey != nil && *thumbnailKey != "" {
			if v.Thumbnail, err = p.resolve(ctx, nil, thumbnailKey); err != nil {
				return nil, fmt.Errorf("carousel %q thumbnail: %w", name, err)
			}
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carousel %q: %w", name, err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("carousel %q: %w", name, ErrCarouselNotFound)
	}
	if err := validateDescriptors(name, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (p *PostgresSource) Hero(ctx context.Context) (playback.HeroSources, error) {
	var lowURL, lowKey, highURL, highKey *string
	err := p.db.QueryRow(ctx,
		`SELECT low_res_url, low_res_key, high_res_url, high_res_key FROM showcase_hero WHERE id = 1`,
	).Scan(&lowURL, &lowKey, &highURL, &highKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return playback.HeroSources{}, ErrHeroNotConfigured
	}
	if err != nil {
		return playback.HeroSources{}, fmt.Errorf("query hero: %w", err)
	}

	var h playback.HeroSources
	if h.LowRes, err = p.resolve(ctx, lowURL, lowKey); err != nil {
		return playback.HeroSources{}, fmt.Errorf("hero low res: %w", err)
	}
	if h.HighRes, err = p.resolve(ctx, highURL, highKey); err != nil {
		return playback.HeroSources{}, fmt.Errorf("hero high res: %w", err)
	}
	if err := validateHero(h); err != nil {
		return playback.HeroSources{}, err
	}
	return h, nil
}

func (p *PostgresSource) resolve(ctx context.Context, rawURL, key *string) (string, error) {
	if rawURL != nil && *rawURL != "" {
		return *rawURL, nil
	}
	if key == nil || *key == "" {
		return "", errors.New("neither url nor object key set")
	}
	if p.storage == nil {
		return "", fmt.Errorf("object key %q without storage", *key)
	}
	return p.storage.MediaURL(ctx, *key)
}
