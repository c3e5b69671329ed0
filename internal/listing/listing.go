// Package listing filters, sorts and trims an analyzed playlist for display.
//
// This package enables playlens to:
// - Sort videos by playlist order, publish date, duration or views
// - Filter by title search, channel and publish date range
// - Limit output to the first N matches
package listing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gauthierbraillon/playlens/internal/playlist"
)

// SortKey identifies the field videos are ordered by.
type SortKey string

const (
	SortOrder    SortKey = "order"
	SortDate     SortKey = "date"
	SortDuration SortKey = "duration"
	SortViews    SortKey = "views"
)

// Options configures which videos are listed and how.
type Options struct {
	Search     string
	ChannelID  string
	Since      time.Time
	Until      time.Time
	Sort       SortKey
	Descending bool
	Limit      int
}

// ParseSort reads forms like "views", "views_desc" or "date_asc".
func ParseSort(s string) (SortKey, bool, error) {
	if s == "" {
		return SortOrder, false, nil
	}

	key, dir, _ := strings.Cut(strings.ToLower(s), "_")
	descending := false
	switch dir {
	case "", "asc":
	case "desc":
		descending = true
	default:
		return "", false, fmt.Errorf("invalid sort direction %q (want asc or desc)", dir)
	}

	switch k := SortKey(key); k {
	case SortOrder, SortDate, SortDuration, SortViews:
		return k, descending, nil
	default:
		return "", false, fmt.Errorf("invalid sort key %q (want order, date, duration or views)", key)
	}
}

// ParseBound reads a publish-date bound given as YYYY-MM-DD (UTC) or RFC 3339.
// A date-only upper bound covers the whole day. Empty input is no bound.
func ParseBound(s string, upper bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
	}
	if upper {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return day, nil
}

// Apply returns the videos selected by opts. The input slice is never modified
// and ties keep their playlist order.
func Apply(videos []playlist.Video, opts Options) []playlist.Video {
	out := make([]playlist.Video, 0, len(videos))
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	for _, v := range videos {
		if search != "" && !strings.Contains(strings.ToLower(v.Title), search) {
			continue
		}
		if opts.ChannelID != "" && v.ChannelID != opts.ChannelID {
			continue
		}
		if !opts.Since.IsZero() && v.PublishedAt.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && v.PublishedAt.After(opts.Until) {
			continue
		}
		out = append(out, v)
	}

	less := lessFunc(opts.Sort)
	sort.SliceStable(out, func(i, j int) bool {
		if opts.Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func lessFunc(key SortKey) func(a, b playlist.Video) bool {
	switch key {
	case SortDate:
		return func(a, b playlist.Video) bool { return a.PublishedAt.Before(b.PublishedAt) }
	case SortDuration:
		return func(a, b playlist.Video) bool { return a.DurationSeconds < b.DurationSeconds }
	case SortViews:
		return func(a, b playlist.Video) bool { return a.ViewCount < b.ViewCount }
	default:
		return func(a, b playlist.Video) bool { return a.Order < b.Order }
	}
}
