package playlist

import "math"

// Summary aggregates totals over a list of videos.
type Summary struct {
	TotalDurationSeconds   int64 `json:"totalDurationSeconds"`
	TotalViews             int64 `json:"totalViews"`
	TotalChannels          int   `json:"totalChannels"`
	AverageDurationSeconds int64 `json:"averageDurationSeconds"`
	AverageViews           int64 `json:"averageViews"`
}

// Summarize computes totals and floored averages. An empty list yields zeros.
func Summarize(videos []Video) Summary {
	var s Summary
	if len(videos) == 0 {
		return s
	}

	channels := make(map[string]struct{})
	for _, v := range videos {
		s.TotalDurationSeconds += v.DurationSeconds
		s.TotalViews += v.ViewCount
		channels[v.ChannelID] = struct{}{}
	}

	n := int64(len(videos))
	s.TotalChannels = len(channels)
	s.AverageDurationSeconds = s.TotalDurationSeconds / n
	s.AverageViews = s.TotalViews / n
	return s
}

// Channel identifies an uploader that appears in a playlist.
type Channel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Channels lists the distinct channels of videos in first-seen order.
func Channels(videos []Video) []Channel {
	seen := make(map[string]struct{})
	channels := make([]Channel, 0)
	for _, v := range videos {
		if _, ok := seen[v.ChannelID]; ok {
			continue
		}
		seen[v.ChannelID] = struct{}{}
		channels = append(channels, Channel{ID: v.ChannelID, Title: v.ChannelTitle})
	}
	return channels
}

// StandardSpeeds are the playback rates offered by the YouTube player.
var StandardSpeeds = []float64{1, 1.25, 1.5, 1.75, 2}

// SpeedImpact is the watch time of a playlist at a given playback rate.
type SpeedImpact struct {
	Speed        float64 `json:"speed"`
	Seconds      int64   `json:"seconds"`
	SavedSeconds int64   `json:"savedSeconds"`
}

// AtSpeed returns the watch time of total seconds played at speed.
// Non-positive speeds are treated as 1.
func AtSpeed(total int64, speed float64) SpeedImpact {
	if speed <= 0 {
		speed = 1
	}
	seconds := int64(math.Floor(float64(total) / speed))
	return SpeedImpact{
		Speed:        speed,
		Seconds:      seconds,
		SavedSeconds: total - seconds,
	}
}
