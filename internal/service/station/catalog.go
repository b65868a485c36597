package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/campusradio/server/internal/repository/audio"
	"github.com/campusradio/server/internal/repository/content"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const defaultPodcastsLimit = 20

func (s service) toPodcast(p content.Podcast) Podcast {
	return Podcast{
		Id:          p.Id,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Host:        p.Host,
		CoverURL:    p.CoverURL,
		DurationSec: p.DurationSec,
		PublishedAt: p.PublishedAt,
	}
}

// audioURL resolves a stored audio key into a playable URL. Keys that already are absolute URLs are returned as is.
func (s service) audioURL(ctx context.Context, key string) (string, error) {
	if strings.HasPrefix(key, "https://") || strings.HasPrefix(key, "http://") {
		return key, nil
	}

	if s.audio == nil {
		return "", ErrStorageNotConfigured
	}

	u, err := s.audio.AudioURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to get audio url: %w", err)
	}

	return u, nil
}

type ListPodcastsParams struct {
	Limit  int
	Offset int
}

func (s service) ListPodcasts(ctx context.Context, params *ListPodcastsParams) (PodcastList, error) {
	if params.Limit == 0 {
		params.Limit = defaultPodcastsLimit
	}

	if err := validation.ValidateStruct(params,
		validation.Field(&params.Limit, LimitRule...),
		validation.Field(&params.Offset, validation.Min(0)),
	); err != nil {
		return PodcastList{}, err
	}

	podcasts, err := s.store.ListPodcasts(ctx, &content.ListPodcastsParams{
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return PodcastList{}, fmt.Errorf("failed to list podcasts: %w", err)
	}

	total, err := s.store.CountPodcasts(ctx)
	if err != nil {
		return PodcastList{}, fmt.Errorf("failed to count podcasts: %w", err)
	}

	items := make([]Podcast, 0, len(podcasts))
	for _, p := range podcasts {
		items = append(items, s.toPodcast(p))
	}

	return PodcastList{
		Items:  items,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

// GetPodcast returns the episode with a playable audio URL.
func (s service) GetPodcast(ctx context.Context, slug string) (Podcast, error) {
	if err := validation.Validate(slug, SlugRule...); err != nil {
		return Podcast{}, ErrPodcastNotFound
	}

	p, err := s.store.GetPodcastBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, content.ErrPodcastNotFound) {
			return Podcast{}, ErrPodcastNotFound
		}

		return Podcast{}, fmt.Errorf("failed to get podcast: %w", err)
	}

	audioURL, err := s.audioURL(ctx, p.AudioKey)
	if err != nil {
		return Podcast{}, err
	}

	podcast := s.toPodcast(p)
	podcast.AudioURL = audioURL

	return podcast, nil
}

type CreatePodcastParams struct {
	Slug        string
	Title       string
	Description string
	Host        string
	CoverURL    string
	AudioKey    string
	DurationSec int
	PublishedAt time.Time
}

func (s service) CreatePodcast(ctx context.Context, params *CreatePodcastParams) (Podcast, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Slug, SlugRule...),
		validation.Field(&params.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&params.AudioKey, validation.Required, validation.Length(1, 1024)),
		validation.Field(&params.CoverURL, OptionalURLRule...),
		validation.Field(&params.DurationSec, validation.Min(0)),
	); err != nil {
		return Podcast{}, err
	}

	publishedAt := params.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = s.now()
	}

	p, err := s.store.CreatePodcast(ctx, &content.CreatePodcastParams{
		Slug:        params.Slug,
		Title:       params.Title,
		Description: params.Description,
		Host:        params.Host,
		CoverURL:    params.CoverURL,
		AudioKey:    params.AudioKey,
		DurationSec: params.DurationSec,
		PublishedAt: publishedAt,
	})
	if err != nil {
		if errors.Is(err, content.ErrPodcastAlreadyExists) {
			return Podcast{}, ErrPodcastAlreadyExists
		}

		return Podcast{}, fmt.Errorf("failed to create podcast: %w", err)
	}

	return s.toPodcast(p), nil
}

func (s service) DeletePodcast(ctx context.Context, id string) error {
	if err := s.store.DeletePodcast(ctx, id); err != nil {
		if errors.Is(err, content.ErrPodcastNotFound) {
			return ErrPodcastNotFound
		}

		return fmt.Errorf("failed to delete podcast: %w", err)
	}

	return nil
}

type SyncPodcastsResponse struct {
	Created []Podcast `json:"created"`
	Skipped int       `json:"skipped"`
}

// SyncPodcasts creates an episode for every bucket audio file not yet referenced by the catalog.
func (s service) SyncPodcasts(ctx context.Context) (SyncPodcastsResponse, error) {
	if s.audio == nil {
		return SyncPodcastsResponse{}, ErrStorageNotConfigured
	}

	objects, err := s.audio.ListAudio(ctx)
	if err != nil {
		return SyncPodcastsResponse{}, fmt.Errorf("failed to list audio: %w", err)
	}

	keys, err := s.store.GetPodcastAudioKeys(ctx)
	if err != nil {
		return SyncPodcastsResponse{}, fmt.Errorf("failed to get audio keys: %w", err)
	}

	known := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		known[key] = struct{}{}
	}

	resp := SyncPodcastsResponse{Created: []Podcast{}}
	for _, obj := range objects {
		if !audio.IsAudioKey(obj.Key) {
			continue
		}

		if _, ok := known[obj.Key]; ok {
			resp.Skipped++
			continue
		}

		params := &content.CreatePodcastParams{
			Slug:        slugFromKey(obj.Key),
			Title:       titleFromKey(obj.Key),
			AudioKey:    obj.Key,
			PublishedAt: obj.LastModified,
		}
		if params.PublishedAt.IsZero() {
			params.PublishedAt = s.now()
		}

		p, err := s.store.CreatePodcast(ctx, params)
		if errors.Is(err, content.ErrPodcastAlreadyExists) {
			// slug taken by an episode with another key
			params.Slug = params.Slug + "-" + uuid.NewString()[:8]
			p, err = s.store.CreatePodcast(ctx, params)
		}
		if err != nil {
			return resp, fmt.Errorf("failed to create podcast for %q: %w", obj.Key, err)
		}

		resp.Created = append(resp.Created, s.toPodcast(p))
	}

	slog.InfoContext(ctx, "podcasts synced", "created", len(resp.Created), "skipped", resp.Skipped)

	return resp, nil
}

func baseName(key string) string {
	name := path.Base(key)
	return strings.TrimSuffix(name, path.Ext(name))
}

// maxSyncSlugLength leaves room for the collision suffix within the slug length limit.
const maxSyncSlugLength = 128 - len("-xxxxxxxx")

func slugFromKey(key string) string {
	// slug.Make keeps underscores, which the slug rule does not
	s := slug.Make(strings.ReplaceAll(baseName(key), "_", "-"))
	if len(s) > maxSyncSlugLength {
		s = strings.TrimRight(s[:maxSyncSlugLength], "-")
	}

	if s == "" {
		return "episode"
	}

	return s
}

func titleFromKey(key string) string {
	title := strings.NewReplacer("-", " ", "_", " ").Replace(baseName(key))
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "Untitled episode"
	}

	return title
}
