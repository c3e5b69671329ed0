// Package display provides terminal output formatting for playlens.
package display

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gauthierbraillon/playlens/internal/analyzer"
	"github.com/gauthierbraillon/playlens/internal/playlist"
)

const separator = " • "

// TerminalFormatter formats analyzed playlists for terminal display.
type TerminalFormatter struct {
	now func() time.Time
}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{now: time.Now}
}

// FormatVideo formats a single video for display.
func (f *TerminalFormatter) FormatVideo(v playlist.Video) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("%3d. %s", v.Order, v.Title))

	meta := []string{
		v.ChannelTitle,
		FormatVideoDuration(v.DurationSeconds),
		FormatViews(v.ViewCount) + " views",
		f.FormatTimestamp(v.PublishedAt),
	}
	lines = append(lines, "     "+strings.Join(meta, separator))
	lines = append(lines, "     "+WatchURL(v.ID))

	return strings.Join(lines, "\n") + "\n"
}

// FormatVideos formats a list of videos for display.
func (f *TerminalFormatter) FormatVideos(videos []playlist.Video) string {
	if len(videos) == 0 {
		return "No videos to display.\n"
	}

	var formatted []string
	for _, v := range videos {
		formatted = append(formatted, f.FormatVideo(v))
	}
	return strings.Join(formatted, "\n")
}

// FormatReport renders the playlist overview, counters, totals and the
// selected videos.
func (f *TerminalFormatter) FormatReport(res *playlist.Result, videos []playlist.Video) string {
	var b strings.Builder
	m := res.Metadata
	c := res.Counts

	fmt.Fprintf(&b, "%s\n", m.Title)
	fmt.Fprintf(&b, "  by %s%screated %s\n", m.ChannelTitle, separator, f.FormatTimestamp(m.PublishedAt))
	fmt.Fprintf(&b, "  %s\n", playlist.URL(m.ID))
	if m.Description != "" {
		fmt.Fprintf(&b, "  %s\n", f.TruncateText(strings.ReplaceAll(m.Description, "\n", " "), 120))
	}

	b.WriteString("\nVideos\n")
	fmt.Fprintf(&b, "  %d listed%s%d available%s%d unavailable (%d private, %d deleted)\n",
		m.TotalVideos, separator, c.Available, separator, c.Unavailable, c.Private, c.Deleted)
	fmt.Fprintf(&b, "  %d excluded (live, upcoming or processing)%s%d analyzed\n", c.Excluded, separator, c.Final)

	s := playlist.Summarize(res.Videos)
	b.WriteString("\nTotals\n")
	fmt.Fprintf(&b, "  %s watch time%s%s views%s%s\n",
		FormatTotalDuration(s.TotalDurationSeconds), separator,
		FormatViews(s.TotalViews), separator,
		pluralizeCount(s.TotalChannels, "channel"))
	fmt.Fprintf(&b, "  average %s%s%s views\n",
		FormatVideoDuration(s.AverageDurationSeconds), separator, FormatViews(s.AverageViews))

	b.WriteString("\nPlayback speed\n")
	for _, speed := range playlist.StandardSpeeds {
		impact := playlist.AtSpeed(s.TotalDurationSeconds, speed)
		line := fmt.Sprintf("  %-5s %s", strconv.FormatFloat(speed, 'f', -1, 64)+"x", FormatTotalDuration(impact.Seconds))
		if impact.SavedSeconds > 0 {
			line += fmt.Sprintf(" (saves %s)", FormatTotalDuration(impact.SavedSeconds))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString(f.FormatChannels(playlist.Channels(res.Videos), res.Videos))

	b.WriteString("\n")
	b.WriteString(f.FormatVideos(videos))
	return b.String()
}

// maxChannelLines caps the channel section of a report.
const maxChannelLines = 10

// FormatChannels lists channels with their video counts and ids, so an id can
// be passed to --channel.
func (f *TerminalFormatter) FormatChannels(channels []playlist.Channel, videos []playlist.Video) string {
	if len(channels) == 0 {
		return ""
	}

	perChannel := make(map[string]int, len(channels))
	for _, v := range videos {
		perChannel[v.ChannelID]++
	}

	var b strings.Builder
	b.WriteString("\nChannels\n")
	for i, c := range channels {
		if i == maxChannelLines {
			fmt.Fprintf(&b, "  ... and %d more (see --json)\n", len(channels)-maxChannelLines)
			break
		}
		fmt.Fprintf(&b, "  %s%s%s%s%s\n", c.Title, separator, pluralizeCount(perChannel[c.ID], "video"), separator, c.ID)
	}
	return b.String()
}

// FormatLimits renders the remaining shared-credential budget.
func (f *TerminalFormatter) FormatLimits(l analyzer.Limits) string {
	return fmt.Sprintf("%d of %d fetches remaining today%splaylists up to %d videos\n",
		l.FetchesRemaining, l.MaxFetches, separator, l.MaxVideosPerFetch)
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := f.now().Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	return pluralizeCount(n, unit) + " ago"
}

func pluralizeCount(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

// WatchURL returns the watch page of a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// FormatVideoDuration renders seconds as mm:ss, or h:mm:ss from one hour up.
func FormatVideoDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatTotalDuration renders seconds as "Xh Ym", or "Ym" under an hour.
func FormatTotalDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m := seconds/3600, seconds%3600/60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

var viewUnits = []string{"K", "M", "B"}

// FormatViews renders a count compactly: 999, 1.2K, 12K, 3.4M, 1B.
func FormatViews(n int64) string {
	if n < 1000 {
		return strconv.FormatInt(n, 10)
	}

	v := float64(n)
	for i, unit := range viewUnits {
		v /= 1000
		// 999.5K would print as 1000K
		if v >= 999.5 && i < len(viewUnits)-1 {
			continue
		}
		return compact(v) + unit
	}
	return strconv.FormatInt(n, 10)
}

func compact(v float64) string {
	if v < 10 {
		return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}
