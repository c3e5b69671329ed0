package playlist

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidID is returned when input is neither a playlist id nor a playlist URL.
var ErrInvalidID = errors.New("invalid playlist id")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10,50}$`)

// ParseID accepts a bare playlist id or a youtube.com URL carrying a list parameter.
func ParseID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if idPattern.MatchString(input) {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidID
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "youtube.com" && host != "m.youtube.com" && host != "music.youtube.com" {
		return "", ErrInvalidID
	}

	id := u.Query().Get("list")
	if !idPattern.MatchString(id) {
		return "", ErrInvalidID
	}
	return id, nil
}

// URL returns the canonical watch page for a playlist.
func URL(id string) string {
	return "https://www.youtube.com/playlist?list=" + url.QueryEscape(id)
}
