// Package classify maps raw user input to a music service and a collection
// flag. Classification is pure, synchronous, and total: any string yields a
// result, unknown input is a valid answer rather than an error.
package classify

import (
	"strings"

	"github.com/desertthunder/grabbit/internal/models"
)

// Result is the classification of one input string.
type Result struct {
	Service      models.MusicService
	IsCollection bool
}

// serviceRule matches a service by host fragments or URI scheme prefixes.
// Rules are checked in order and the first match wins.
type serviceRule struct {
	service  models.MusicService
	hosts    []string
	prefixes []string
}

var serviceRules = []serviceRule{
	{service: models.ServiceYouTube, hosts: []string{"youtube.com", "youtu.be", "music.youtube.com"}},
	{service: models.ServiceSpotify, hosts: []string{"spotify.com"}, prefixes: []string{"spotify:"}},
	{service: models.ServiceSoundCloud, hosts: []string{"soundcloud.com"}},
	{service: models.ServiceDeezer, hosts: []string{"deezer.com"}},
	{service: models.ServiceTidal, hosts: []string{"tidal.com"}},
	{service: models.ServiceAppleMusic, hosts: []string{"music.apple.com"}},
	{service: models.ServiceBandcamp, hosts: []string{"bandcamp.com"}},
}

// Classify determines which service an input belongs to and whether it refers
// to a collection (album or playlist) rather than a single item. Matching is
// case-insensitive.
func Classify(input string) Result {
	lower := strings.ToLower(strings.TrimSpace(input))

	for _, rule := range serviceRules {
		if rule.matches(lower) {
			return Result{
				Service:      rule.service,
				IsCollection: isCollection(lower, rule.service),
			}
		}
	}

	return Result{Service: models.ServiceUnknown}
}

func (r serviceRule) matches(lower string) bool {
	for _, h := range r.hosts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// isCollection checks the album/playlist patterns for the matched service.
// Spotify: /album or /playlist path segments, album: or playlist: URI
// segments. YouTube: a list= query parameter.
func isCollection(lower string, service models.MusicService) bool {
	switch service {
	case models.ServiceSpotify:
		return strings.Contains(lower, "/album") ||
			strings.Contains(lower, "album:") ||
			strings.Contains(lower, "/playlist") ||
			strings.Contains(lower, "playlist:")
	case models.ServiceYouTube:
		return strings.Contains(lower, "list=")
	case models.ServiceAppleMusic:
		// an i= query param narrows an album page to a single track
		return strings.Contains(lower, "/album/") &&
			!strings.Contains(lower, "?i=") && !strings.Contains(lower, "&i=")
	default:
		return false
	}
}

// IsPlaylist reports whether a collection input is a playlist rather than an
// album, deciding which engine expansion to request. YouTube collections are
// always playlists.
func IsPlaylist(input string, service models.MusicService) bool {
	lower := strings.ToLower(input)
	switch service {
	case models.ServiceSpotify:
		return strings.Contains(lower, "/playlist") || strings.Contains(lower, "playlist:")
	case models.ServiceYouTube:
		return true
	default:
		return false
	}
}
