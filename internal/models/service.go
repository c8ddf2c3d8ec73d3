package models

// MusicService identifies the streaming service a URL points at.
type MusicService string

const (
	ServiceYouTube    MusicService = "youtube"
	ServiceSpotify    MusicService = "spotify"
	ServiceSoundCloud MusicService = "soundcloud"
	ServiceDeezer     MusicService = "deezer"
	ServiceTidal      MusicService = "tidal"
	ServiceAppleMusic MusicService = "apple_music"
	ServiceBandcamp   MusicService = "bandcamp"
	ServiceUnknown    MusicService = "unknown"
)

// DisplayName returns the service name for presentation.
func (s MusicService) DisplayName() string {
	switch s {
	case ServiceYouTube:
		return "YouTube"
	case ServiceSpotify:
		return "Spotify"
	case ServiceSoundCloud:
		return "SoundCloud"
	case ServiceDeezer:
		return "Deezer"
	case ServiceTidal:
		return "Tidal"
	case ServiceAppleMusic:
		return "Apple Music"
	case ServiceBandcamp:
		return "Bandcamp"
	default:
		return "Unknown"
	}
}
