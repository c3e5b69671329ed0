package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.googleapis.com"

// MaxResults is the largest page (and id batch) the API accepts.
const MaxResults = 50

const baseFields = "kind,etag,nextPageToken,prevPageToken,pageInfo"

const (
	playlistPart   = "snippet,contentDetails"
	playlistFields = baseFields + ",items(id,snippet(publishedAt,channelId,title,description,thumbnails,channelTitle),contentDetails(itemCount))"

	playlistItemPart   = "snippet,contentDetails,status"
	playlistItemFields = baseFields + ",items(id,snippet(position),contentDetails(videoId),status(privacyStatus))"

	videoPart   = "snippet,contentDetails,status,statistics"
	videoFields = baseFields + ",items(id,snippet(publishedAt,channelId,title,channelTitle,liveBroadcastContent),contentDetails(duration),status(uploadStatus),statistics(viewCount))"
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithRateLimit paces outgoing requests. A zero or negative limit disables pacing.
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// Client is a YouTube Data API client authenticated with an API key.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	limiter    *rate.Limiter
}

// NewClient creates a new YouTube API client with the given API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchPlaylists looks up playlist metadata for the given ids.
func (c *Client) FetchPlaylists(ctx context.Context, ids []string) ([]Playlist, error) {
	params := url.Values{}
	params.Set("id", strings.Join(ids, ","))
	params.Set("part", playlistPart)
	params.Set("fields", playlistFields)
	params.Set("maxResults", strconv.Itoa(MaxResults))

	var response playlistsResponse
	if err := c.get(ctx, "playlists", params, &response); err != nil {
		return nil, err
	}

	playlists := make([]Playlist, 0, len(response.Items))
	for _, item := range response.Items {
		publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		thumbnails := make(map[string]Thumbnail, len(item.Snippet.Thumbnails))
		for size, thumb := range item.Snippet.Thumbnails {
			thumbnails[size] = thumb
		}

		playlists = append(playlists, Playlist{
			ID:           item.ID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			PublishedAt:  publishedAt,
			ChannelID:    item.Snippet.ChannelID,
			ChannelTitle: item.Snippet.ChannelTitle,
			Thumbnails:   thumbnails,
			ItemCount:    item.ContentDetails.ItemCount,
		})
	}

	return playlists, nil
}

// FetchPlaylistItems retrieves one page of a playlist's members.
// An empty pageToken requests the first page.
func (c *Client) FetchPlaylistItems(ctx context.Context, playlistID, pageToken string) (*PlaylistItemsPage, error) {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	params.Set("part", playlistItemPart)
	params.Set("fields", playlistItemFields)
	params.Set("maxResults", strconv.Itoa(MaxResults))
	params.Set("pageToken", pageToken)

	var response playlistItemsResponse
	if err := c.get(ctx, "playlistItems", params, &response); err != nil {
		return nil, err
	}

	page := &PlaylistItemsPage{
		Items:         make([]PlaylistItem, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, PlaylistItem{
			ID:            item.ID,
			VideoID:       item.ContentDetails.VideoID,
			Position:      item.Snippet.Position,
			PrivacyStatus: item.Status.PrivacyStatus,
		})
	}

	return page, nil
}

// FetchVideos batch-fetches video details. Callers keep ids within MaxResults.
func (c *Client) FetchVideos(ctx context.Context, ids []string) ([]Video, error) {
	params := url.Values{}
	params.Set("id", strings.Join(ids, ","))
	params.Set("part", videoPart)
	params.Set("fields", videoFields)
	params.Set("maxResults", strconv.Itoa(MaxResults))

	var response videosResponse
	if err := c.get(ctx, "videos", params, &response); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(response.Items))
	for _, item := range response.Items {
		publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		videos = append(videos, Video{
			ID:                   item.ID,
			Title:                item.Snippet.Title,
			ChannelID:            item.Snippet.ChannelID,
			ChannelTitle:         item.Snippet.ChannelTitle,
			PublishedAt:          publishedAt,
			Duration:             item.ContentDetails.Duration,
			ViewCount:            item.Statistics.ViewCount,
			LiveBroadcastContent: item.Snippet.LiveBroadcastContent,
			UploadStatus:         item.Status.UploadStatus,
		})
	}

	return videos, nil
}

func (c *Client) get(ctx context.Context, resource string, params url.Values, out any) error {
	body, err := c.doRequest(ctx, resource, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", resource, err)
	}

	return nil
}

func (c *Client) doRequest(ctx context.Context, resource string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("request pacing: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params.Set("key", c.apiKey)
	endpoint := fmt.Sprintf("%s/youtube/v3/%s?%s", c.baseURL, resource, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("YouTube API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Body = *envelope.Error
	} else {
		apiErr.Body = ErrorBody{Code: statusCode, Message: strings.TrimSpace(string(body))}
	}
	if apiErr.Body.Code == 0 {
		apiErr.Body.Code = statusCode
	}

	return apiErr
}

// AsAPIError unwraps err into an *APIError when one is in its chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// API response types (private - implementation detail)

type errorResponse struct {
	Error *ErrorBody `json:"error"`
}

type playlistsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			PublishedAt  string               `json:"publishedAt"`
			ChannelID    string               `json:"channelId"`
			Title        string               `json:"title"`
			Description  string               `json:"description"`
			Thumbnails   map[string]Thumbnail `json:"thumbnails"`
			ChannelTitle string               `json:"channelTitle"`
		} `json:"snippet"`
		ContentDetails struct {
			ItemCount int `json:"itemCount"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string `json:"id"`
		Snippet struct {
			Position int `json:"position"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
		Status struct {
			PrivacyStatus string `json:"privacyStatus"`
		} `json:"status"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			PublishedAt          string `json:"publishedAt"`
			ChannelID            string `json:"channelId"`
			Title                string `json:"title"`
			ChannelTitle         string `json:"channelTitle"`
			LiveBroadcastContent string `json:"liveBroadcastContent"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Status struct {
			UploadStatus string `json:"uploadStatus"`
		} `json:"status"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}
