package playlist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gauthierbraillon/playlens/internal/normalize"
	"github.com/gauthierbraillon/playlens/internal/youtube"
)

// Upstream is the subset of the YouTube client the pipeline needs.
type Upstream interface {
	FetchPlaylists(ctx context.Context, ids []string) ([]youtube.Playlist, error)
	FetchPlaylistItems(ctx context.Context, playlistID, pageToken string) (*youtube.PlaylistItemsPage, error)
	FetchVideos(ctx context.Context, ids []string) ([]youtube.Video, error)
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger used for pagination progress.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Service runs the aggregation pipeline against one upstream.
// It keeps no per-call state, so one Service may serve concurrent calls.
type Service struct {
	upstream Upstream
	log      *slog.Logger
}

// NewService creates a pipeline over the given upstream.
func NewService(upstream Upstream, opts ...Option) *Service {
	s := &Service{
		upstream: upstream,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchMetadata looks up a single playlist. It returns nil, nil when YouTube
// reports no such playlist.
func (s *Service) FetchMetadata(ctx context.Context, playlistID string) (*Metadata, error) {
	playlists, err := s.upstream.FetchPlaylists(ctx, []string{playlistID})
	if err != nil {
		return nil, fmt.Errorf("fetch playlist metadata: %w", err)
	}
	if len(playlists) == 0 {
		return nil, nil
	}

	p := playlists[0]
	return &Metadata{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		PublishedAt:  p.PublishedAt,
		Thumbnails:   p.Thumbnails,
		ChannelID:    p.ChannelID,
		ChannelTitle: p.ChannelTitle,
		TotalVideos:  p.ItemCount,
	}, nil
}

// slot is an eligible entry waiting for its detail lookup.
type slot struct {
	videoID string
	order   int
}

// FetchVideos walks every membership page of the playlist and returns the
// classified, normalized video list. Any error aborts the whole walk.
func (s *Service) FetchVideos(ctx context.Context, playlistID string) (*VideoList, error) {
	list := &VideoList{Videos: make([]Video, 0)}
	seq := 0
	pageToken := ""

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := s.upstream.FetchPlaylistItems(ctx, playlistID, pageToken)
		if err != nil {
			return nil, fmt.Errorf("fetch playlist items (page %d): %w", page, err)
		}

		var eligible []slot
		eligible, seq = classify(items.Items, &list.Counts, seq)

		emitted := len(list.Videos)
		if err := s.appendDetails(ctx, eligible, list); err != nil {
			return nil, fmt.Errorf("fetch video details (page %d): %w", page, err)
		}

		s.log.Debug("playlist page aggregated",
			slog.String("playlist_id", playlistID),
			slog.Int("page", page),
			slog.Int("entries", len(items.Items)),
			slog.Int("eligible", len(eligible)),
			slog.Int("emitted", len(list.Videos)-emitted),
		)

		pageToken = items.NextPageToken
		if pageToken == "" {
			break
		}
	}

	list.Counts.Unavailable = list.Counts.Deleted + list.Counts.Private
	list.Counts.Final = len(list.Videos)

	return list, nil
}

// classify counts one page of entries by privacy status and assigns the next
// sequence positions to eligible ones. It returns the advanced sequence.
func classify(items []youtube.PlaylistItem, counts *Counts, seq int) ([]slot, int) {
	eligible := make([]slot, 0, len(items))
	for _, item := range items {
		switch item.PrivacyStatus {
		case youtube.PrivacyPublic, youtube.PrivacyUnlisted:
			counts.Available++
			seq++
			eligible = append(eligible, slot{videoID: item.VideoID, order: seq})
		case youtube.PrivacyPrivate:
			counts.Private++
		default:
			counts.Deleted++
		}
	}
	return eligible, seq
}

// appendDetails fetches details for the eligible slots and appends accepted
// videos in slot order. Details are matched by id, so upstream ordering does
// not matter.
func (s *Service) appendDetails(ctx context.Context, eligible []slot, list *VideoList) error {
	if len(eligible) == 0 {
		return nil
	}

	details, err := s.fetchDetails(ctx, uniqueIDs(eligible))
	if err != nil {
		return err
	}

	for _, sl := range eligible {
		detail, ok := details[sl.videoID]
		if !ok {
			// Listed but gone by the time details were requested.
			list.Counts.Available--
			list.Counts.Deleted++
			continue
		}

		if isExcluded(detail) {
			list.Counts.Excluded++
			continue
		}

		video, err := toVideo(detail, sl.order)
		if err != nil {
			return err
		}
		list.Videos = append(list.Videos, video)
	}

	return nil
}

func (s *Service) fetchDetails(ctx context.Context, ids []string) (map[string]youtube.Video, error) {
	details := make(map[string]youtube.Video, len(ids))
	for start := 0; start < len(ids); start += youtube.MaxResults {
		end := min(start+youtube.MaxResults, len(ids))

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		videos, err := s.upstream.FetchVideos(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, v := range videos {
			details[v.ID] = v
		}
	}
	return details, nil
}

func uniqueIDs(slots []slot) []string {
	seen := make(map[string]struct{}, len(slots))
	ids := make([]string, 0, len(slots))
	for _, sl := range slots {
		if _, dup := seen[sl.videoID]; dup {
			continue
		}
		seen[sl.videoID] = struct{}{}
		ids = append(ids, sl.videoID)
	}
	return ids
}

// isExcluded reports live or upcoming broadcasts and unprocessed uploads.
func isExcluded(v youtube.Video) bool {
	return v.LiveBroadcastContent != youtube.LiveBroadcastNone ||
		v.UploadStatus != youtube.UploadProcessed
}

func toVideo(v youtube.Video, order int) (Video, error) {
	seconds, err := normalize.ToSeconds(v.Duration)
	if err != nil {
		return Video{}, fmt.Errorf("video %s: %w", v.ID, err)
	}
	views, err := normalize.ToCount(v.ViewCount)
	if err != nil {
		return Video{}, fmt.Errorf("video %s: %w", v.ID, err)
	}

	return Video{
		ID:              v.ID,
		Order:           order,
		ChannelID:       v.ChannelID,
		ChannelTitle:    v.ChannelTitle,
		Title:           v.Title,
		PublishedAt:     v.PublishedAt,
		DurationSeconds: seconds,
		ViewCount:       views,
	}, nil
}
