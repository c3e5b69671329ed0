// Package contracts holds sample YouTube Data API v3 responses in the exact
// shape playlens requests them, for serving from fake servers in tests.
package contracts

// PlaylistsContract is a playlists.list response for the metadata projection.
const PlaylistsContract = `{
  "kind": "youtube#playlistListResponse",
  "etag": "pl-etag",
  "pageInfo": {"totalResults": 1, "resultsPerPage": 50},
  "items": [{
    "id": "PLcontract0001",
    "snippet": {
      "publishedAt": "2023-05-10T08:30:00Z",
      "channelId": "UCcontract",
      "title": "Contract Playlist",
      "description": "Talks from the contract conference",
      "thumbnails": {
        "default": {"url": "https://i.ytimg.com/vi/a/default.jpg", "width": 120, "height": 90},
        "high": {"url": "https://i.ytimg.com/vi/a/hqdefault.jpg", "width": 480, "height": 360}
      },
      "channelTitle": "Contract Channel"
    },
    "contentDetails": {"itemCount": 3}
  }]
}`

// PlaylistItemsContract is the first page of a playlistItems.list response.
const PlaylistItemsContract = `{
  "kind": "youtube#playlistItemListResponse",
  "etag": "pi-etag",
  "nextPageToken": "CAIQAA",
  "pageInfo": {"totalResults": 3, "resultsPerPage": 50},
  "items": [
    {"id": "item-1", "snippet": {"position": 0}, "contentDetails": {"videoId": "vidcontract1"}, "status": {"privacyStatus": "public"}},
    {"id": "item-2", "snippet": {"position": 1}, "contentDetails": {"videoId": "vidcontract2"}, "status": {"privacyStatus": "private"}},
    {"id": "item-3", "snippet": {"position": 2}, "contentDetails": {"videoId": "vidcontract3"}, "status": {"privacyStatus": "privacyStatusUnspecified"}}
  ]
}`

// VideosContract is a videos.list response for the detail projection.
const VideosContract = `{
  "kind": "youtube#videoListResponse",
  "etag": "v-etag",
  "pageInfo": {"totalResults": 1, "resultsPerPage": 1},
  "items": [{
    "id": "vidcontract1",
    "snippet": {
      "publishedAt": "2023-05-11T09:00:00Z",
      "channelId": "UCspeaker",
      "title": "Concurrency Patterns",
      "channelTitle": "Speaker Channel",
      "liveBroadcastContent": "none"
    },
    "contentDetails": {"duration": "PT1H2M3S"},
    "status": {"uploadStatus": "processed"},
    "statistics": {"viewCount": "123456"}
  }]
}`

// QuotaExceededContract is the 403 body sent once a key's daily quota is spent.
const QuotaExceededContract = `{
  "error": {
    "code": 403,
    "message": "The request cannot be completed because you have exceeded your quota.",
    "errors": [{
      "message": "The request cannot be completed because you have exceeded your quota.",
      "domain": "youtube.quota",
      "reason": "quotaExceeded"
    }]
  }
}`

// PlaylistNotFoundContract is the 404 body for an unknown or private playlist.
const PlaylistNotFoundContract = `{
  "error": {
    "code": 404,
    "message": "The playlist identified with the request's playlistId parameter cannot be found.",
    "errors": [{
      "message": "The playlist identified with the request's playlistId parameter cannot be found.",
      "domain": "youtube.playlistItem",
      "reason": "playlistNotFound",
      "location": "playlistId",
      "locationType": "parameter"
    }]
  }
}`
