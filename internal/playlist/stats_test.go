package playlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	videos := []Video{
		{ChannelID: "UC1", DurationSeconds: 100, ViewCount: 10},
		{ChannelID: "UC2", DurationSeconds: 201, ViewCount: 21},
		{ChannelID: "UC1", DurationSeconds: 0, ViewCount: 0},
	}

	s := Summarize(videos)
	require.Equal(t, int64(301), s.TotalDurationSeconds)
	require.Equal(t, int64(31), s.TotalViews)
	require.Equal(t, 2, s.TotalChannels)
	require.Equal(t, int64(100), s.AverageDurationSeconds)
	require.Equal(t, int64(10), s.AverageViews)
}

func TestSummarize_Empty(t *testing.T) {
	require.Equal(t, Summary{}, Summarize(nil))
}

func TestChannels_FirstSeenOrder(t *testing.T) {
	videos := []Video{
		{ChannelID: "UC2", ChannelTitle: "Two"},
		{ChannelID: "UC1", ChannelTitle: "One"},
		{ChannelID: "UC2", ChannelTitle: "Two"},
	}
	require.Equal(t, []Channel{{ID: "UC2", Title: "Two"}, {ID: "UC1", Title: "One"}}, Channels(videos))
	require.NotNil(t, Channels(nil))
}

func TestAtSpeed(t *testing.T) {
	tests := []struct {
		speed       float64
		wantSeconds int64
		wantSaved   int64
	}{
		{1, 3600, 0},
		{1.25, 2880, 720},
		{1.5, 2400, 1200},
		{1.75, 2057, 1543},
		{2, 1800, 1800},
		{0, 3600, 0},
	}
	for _, tt := range tests {
		got := AtSpeed(3600, tt.speed)
		require.Equal(t, tt.wantSeconds, got.Seconds, "speed %v", tt.speed)
		require.Equal(t, tt.wantSaved, got.SavedSeconds, "speed %v", tt.speed)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", "PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf"},
		{"  PL1234567890  ", "PL1234567890"},
		{"https://www.youtube.com/playlist?list=PL1234567890", "PL1234567890"},
		{"https://youtube.com/watch?v=abc&list=PL_abc-12345", "PL_abc-12345"},
		{"https://music.youtube.com/playlist?list=OLAK5uy_abcdefghij", "OLAK5uy_abcdefghij"},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.input)
		require.NoError(t, err, tt.input)
		require.Equal(t, tt.want, got)
	}
}

func TestParseID_Rejects(t *testing.T) {
	for _, input := range []string{
		"",
		"short",
		"has spaces in the id",
		"https://example.com/playlist?list=PL1234567890",
		"https://www.youtube.com/playlist",
		"ftp://youtube.com/playlist?list=PL1234567890",
		"PL1234567890!",
	} {
		_, err := ParseID(input)
		require.True(t, errors.Is(err, ErrInvalidID), input)
	}
}

func TestURL(t *testing.T) {
	require.Equal(t, "https://www.youtube.com/playlist?list=PL1234567890", URL("PL1234567890"))
}
