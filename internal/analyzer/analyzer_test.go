package analyzer

// Test requirements (this file serves as documentation):
// - Shared-credential requests spend one quota unit before any upstream call
// - Oversize playlists are rejected before their videos are walked
// - Caller API keys bypass both the quota gate and the size ceiling
// - Upstream quota exhaustion on the shared key surfaces as saturation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/playlens/internal/playlist"
	"github.com/gauthierbraillon/playlens/internal/quota"
	"github.com/gauthierbraillon/playlens/internal/youtube"
)

type stubUpstream struct {
	itemCount int
	missing   bool
	err       error

	metadataCalls int
	itemsCalls    int
}

func (s *stubUpstream) FetchPlaylists(_ context.Context, ids []string) ([]youtube.Playlist, error) {
	s.metadataCalls++
	if s.err != nil {
		return nil, s.err
	}
	if s.missing {
		return []youtube.Playlist{}, nil
	}
	return []youtube.Playlist{{ID: ids[0], Title: "Mix", ItemCount: s.itemCount}}, nil
}

func (s *stubUpstream) FetchPlaylistItems(context.Context, string, string) (*youtube.PlaylistItemsPage, error) {
	s.itemsCalls++
	return &youtube.PlaylistItemsPage{Items: []youtube.PlaylistItem{
		{VideoID: "v1", PrivacyStatus: youtube.PrivacyPublic},
		{VideoID: "v2", PrivacyStatus: youtube.PrivacyPrivate},
	}}, nil
}

func (s *stubUpstream) FetchVideos(_ context.Context, ids []string) ([]youtube.Video, error) {
	return []youtube.Video{{
		ID:                   "v1",
		Title:                "First",
		ChannelID:            "UC1",
		PublishedAt:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Duration:             "PT4M",
		ViewCount:            "77",
		LiveBroadcastContent: youtube.LiveBroadcastNone,
		UploadStatus:         youtube.UploadProcessed,
	}}, nil
}

func quotaErr() *youtube.APIError {
	return &youtube.APIError{StatusCode: 403, Body: youtube.ErrorBody{
		Code:    403,
		Message: "quota",
		Errors:  []youtube.ErrorDetail{{Reason: "quotaExceeded"}},
	}}
}

func TestAnalyze_SharedCredential(t *testing.T) {
	up := &stubUpstream{itemCount: 2}
	gate := quota.New(quota.NewMemoryStore())
	a := New(up, gate)

	res, err := a.Analyze(context.Background(), Request{PlaylistID: "PL1234567890", Identity: "10.0.0.1"})
	require.NoError(t, err)

	require.Equal(t, "Mix", res.Metadata.Title)
	require.Equal(t, 1, res.Counts.Final)
	require.Equal(t, 1, res.Counts.Private)
	require.Equal(t, int64(240), res.Videos[0].DurationSeconds)

	lim, err := a.Limits(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, Limits{FetchesUsed: 1, FetchesRemaining: 4, MaxFetches: 5, MaxVideosPerFetch: 500}, lim)
}

func TestAnalyze_RateLimitedBeforeUpstream(t *testing.T) {
	up := &stubUpstream{itemCount: 2}
	gate := quota.NewLimiter(quota.NewMemoryStore(), 1, time.Hour)
	a := New(up, gate)
	ctx := context.Background()

	_, err := a.Analyze(ctx, Request{PlaylistID: "PL1234567890", Identity: "ip"})
	require.NoError(t, err)

	_, err = a.Analyze(ctx, Request{PlaylistID: "PL1234567890", Identity: "ip"})
	require.ErrorIs(t, err, quota.ErrRateLimited)
	require.Equal(t, 1, up.metadataCalls, "rejected request must not reach YouTube")
}

func TestAnalyze_Oversize(t *testing.T) {
	up := &stubUpstream{itemCount: quota.MaxVideosPerFetch + 1}
	a := New(up, quota.New(quota.NewMemoryStore()))

	_, err := a.Analyze(context.Background(), Request{PlaylistID: "PL1234567890", Identity: "ip"})

	var oversize *OversizeError
	require.ErrorAs(t, err, &oversize)
	require.Equal(t, 501, oversize.TotalVideos)
	require.Equal(t, 500, oversize.Limit)
	require.Zero(t, up.itemsCalls, "oversize playlist must not be walked")
}

func TestAnalyze_ExactlyAtLimitIsAccepted(t *testing.T) {
	up := &stubUpstream{itemCount: quota.MaxVideosPerFetch}
	a := New(up, quota.New(quota.NewMemoryStore()))

	_, err := a.Analyze(context.Background(), Request{PlaylistID: "PL1234567890", Identity: "ip"})
	require.NoError(t, err)
}

func TestAnalyze_NotFound(t *testing.T) {
	a := New(&stubUpstream{missing: true}, quota.New(quota.NewMemoryStore()))

	_, err := a.Analyze(context.Background(), Request{PlaylistID: "PL1234567890", Identity: "ip"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyze_UserKeyBypassesGateAndCeiling(t *testing.T) {
	shared := &stubUpstream{}
	own := &stubUpstream{itemCount: 10_000}
	gate := quota.NewLimiter(quota.NewMemoryStore(), 0, time.Hour)

	var gotKey string
	a := New(shared, gate, WithClientFactory(func(apiKey string) playlist.Upstream {
		gotKey = apiKey
		return own
	}))

	res, err := a.Analyze(context.Background(), Request{PlaylistID: "PL1234567890", APIKey: "AIzaOwn", Identity: "ip"})
	require.NoError(t, err)
	require.Equal(t, 10_000, res.Metadata.TotalVideos)
	require.Equal(t, "AIzaOwn", gotKey)
	require.Zero(t, shared.metadataCalls)

	lim, err := a.Limits(context.Background(), "ip")
	require.NoError(t, err)
	require.Zero(t, lim.FetchesUsed, "user key must not spend shared quota")
}

func TestAnalyze_SharedQuotaExhaustedIsSaturation(t *testing.T) {
	a := New(&stubUpstream{err: quotaErr()}, quota.New(quota.NewMemoryStore()))

	_, err := a.Analyze(context.Background(), Request{PlaylistID: "PL1234567890", Identity: "ip"})
	require.ErrorIs(t, err, ErrServiceSaturated)

	apiErr, ok := youtube.AsAPIError(err)
	require.True(t, ok, "cause stays reachable")
	require.True(t, apiErr.IsQuotaExceeded())
}

func TestAnalyze_UserKeyQuotaExhaustedIsUpstreamError(t *testing.T) {
	own := &stubUpstream{err: quotaErr()}
	a := New(&stubUpstream{}, quota.New(quota.NewMemoryStore()), WithClientFactory(func(string) playlist.Upstream { return own }))

	_, err := a.Analyze(context.Background(), Request{PlaylistID: "PL1234567890", APIKey: "k"})

	require.False(t, errors.Is(err, ErrServiceSaturated))
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	require.True(t, upErr.UserKey)
	require.Contains(t, upErr.Error(), "your API key")
}

func TestAnalyze_CanceledContextPassesThrough(t *testing.T) {
	a := New(&stubUpstream{err: context.Canceled}, quota.New(quota.NewMemoryStore()))

	_, err := a.Analyze(context.Background(), Request{PlaylistID: "PL1234567890", Identity: "ip"})
	require.ErrorIs(t, err, context.Canceled)

	var upErr *UpstreamError
	require.False(t, errors.As(err, &upErr))
}
