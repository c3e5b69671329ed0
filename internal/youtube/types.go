// Package youtube provides a client for the YouTube Data API v3.
//
// This package enables playlens to:
// - Look up playlist metadata (batched by id)
// - Page through the members of a playlist
// - Batch-fetch video details for a list of ids
package youtube

import "time"

// Privacy statuses reported on playlist items.
const (
	PrivacyPublic      = "public"
	PrivacyUnlisted    = "unlisted"
	PrivacyPrivate     = "private"
	PrivacyUnspecified = "privacyStatusUnspecified"
)

// Live broadcast states reported on video snippets.
const (
	LiveBroadcastNone     = "none"
	LiveBroadcastLive     = "live"
	LiveBroadcastUpcoming = "upcoming"
)

// Upload statuses reported on videos.
const (
	UploadDeleted   = "deleted"
	UploadFailed    = "failed"
	UploadProcessed = "processed"
	UploadRejected  = "rejected"
	UploadUploaded  = "uploaded"
)

// Thumbnail is one size variant of an image.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Playlist is the metadata of a playlist resource.
type Playlist struct {
	ID           string
	Title        string
	Description  string
	PublishedAt  time.Time
	ChannelID    string
	ChannelTitle string
	Thumbnails   map[string]Thumbnail
	// ItemCount is what YouTube declares; it may exceed the number of fetchable items.
	ItemCount int
}

// PlaylistItem is one membership row of a playlist.
type PlaylistItem struct {
	ID            string
	VideoID       string
	Position      int
	PrivacyStatus string
}

// PlaylistItemsPage is one page of playlist membership.
type PlaylistItemsPage struct {
	Items         []PlaylistItem
	NextPageToken string
}

// Video holds the raw detail fields of a video resource.
type Video struct {
	ID                   string
	Title                string
	ChannelID            string
	ChannelTitle         string
	PublishedAt          time.Time
	Duration             string
	ViewCount            string
	LiveBroadcastContent string
	UploadStatus         string
}
