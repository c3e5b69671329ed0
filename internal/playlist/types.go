// Package playlist aggregates a YouTube playlist into an ordered list of
// available videos plus classification counters.
//
// This package enables playlens to:
// - Walk every membership page of a playlist
// - Classify entries by privacy, liveness and processing status
// - Normalize durations and view counts into integers
// - Derive totals and averages for presentation
package playlist

import (
	"time"

	"github.com/gauthierbraillon/playlens/internal/youtube"
)

// Thumbnail is one size variant of the playlist artwork.
type Thumbnail = youtube.Thumbnail

// Metadata describes a playlist as reported by YouTube.
type Metadata struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	PublishedAt  time.Time            `json:"publishedAt"`
	Thumbnails   map[string]Thumbnail `json:"thumbnails"`
	ChannelID    string               `json:"channelId"`
	ChannelTitle string               `json:"channelTitle"`
	// TotalVideos is the declared count; it may exceed what can be fetched.
	TotalVideos int `json:"totalVideos"`
}

// Video is one available, processed, non-live playlist entry.
type Video struct {
	ID string `json:"id"`
	// Order is the 1-based position among eligible entries of the whole playlist.
	Order           int       `json:"order"`
	ChannelID       string    `json:"channelId"`
	ChannelTitle    string    `json:"channelTitle"`
	Title           string    `json:"title"`
	PublishedAt     time.Time `json:"publishedAt"`
	DurationSeconds int64     `json:"durationSeconds"`
	ViewCount       int64     `json:"viewCount"`
}

// Counts classifies every membership entry of a playlist.
type Counts struct {
	Available   int `json:"available"`
	Private     int `json:"private"`
	Deleted     int `json:"deleted"`
	Unavailable int `json:"unavailable"`
	Excluded    int `json:"excluded"`
	Final       int `json:"final"`
}

// VideoList is the outcome of walking a playlist's membership.
type VideoList struct {
	Counts Counts  `json:"videosCount"`
	Videos []Video `json:"videos"`
}

// Result is a fully analyzed playlist.
type Result struct {
	Metadata Metadata `json:"metadata"`
	Counts   Counts   `json:"videosCount"`
	Videos   []Video  `json:"videos"`
}

// NewResult joins metadata with a walked video list.
func NewResult(meta Metadata, list *VideoList) *Result {
	return &Result{
		Metadata: meta,
		Counts:   list.Counts,
		Videos:   list.Videos,
	}
}
