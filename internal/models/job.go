package models

import "strings"

// DownloadStatus represents the engine-reported state of a download job.
type DownloadStatus string

const (
	StatusQueued      DownloadStatus = "queued"
	StatusDownloading DownloadStatus = "downloading"
	StatusConverting  DownloadStatus = "converting"
	StatusComplete    DownloadStatus = "complete"
	StatusError       DownloadStatus = "error"
)

// IsActive returns true while the engine is working on the job.
func (s DownloadStatus) IsActive() bool {
	return s == StatusDownloading || s == StatusConverting
}

// IsTerminal returns true once the job will receive no further updates.
func (s DownloadStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// TrackMetadata describes the media behind a job, filled in by the engine as
// it resolves the URL.
type TrackMetadata struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	Duration  int    `json:"duration,omitempty"` // seconds
	Thumbnail string `json:"thumbnail,omitempty"`
}

// DownloadJob is one entry in the engine's queue. The ID is engine-assigned
// and opaque to this layer.
type DownloadJob struct {
	ID          string         `json:"id"`
	URL         string         `json:"url"`
	Service     MusicService   `json:"service"`
	Status      DownloadStatus `json:"status"`
	Progress    float64        `json:"progress"` // 0–100
	Message     string         `json:"message"`
	Metadata    TrackMetadata  `json:"metadata"`
	OutputPath  string         `json:"output_path,omitempty"`
	CreatedAt   int64          `json:"created_at"`
	StartedAt   int64          `json:"started_at,omitempty"`
	CompletedAt int64          `json:"completed_at,omitempty"`
	Err         string         `json:"error,omitempty"`
}

// DisplayTitle returns the resolved title when metadata has arrived, falling
// back to a readable placeholder derived from the URL.
func (j DownloadJob) DisplayTitle() string {
	if j.Metadata.Title != "" {
		return j.Metadata.Title
	}
	return InitialTitle(j.URL, j.Service)
}

// InitialTitle derives a human-readable placeholder title from a URL before
// the engine has fetched metadata for it.
func InitialTitle(url string, service MusicService) string {
	switch service {
	case ServiceYouTube:
		if idx := strings.Index(url, "v="); idx >= 0 {
			id := url[idx+2:]
			if amp := strings.IndexByte(id, '&'); amp >= 0 {
				id = id[:amp]
			}
			if id != "" {
				if len(id) > 11 {
					id = id[:11]
				}
				return "YouTube: " + id
			}
		}
		return "YouTube video"
	case ServiceSpotify:
		if idx := strings.Index(url, "/track/"); idx >= 0 {
			id := url[idx+len("/track/"):]
			if q := strings.IndexByte(id, '?'); q >= 0 {
				id = id[:q]
			}
			if id != "" {
				if len(id) > 22 {
					id = id[:22]
				}
				return "Spotify: " + id
			}
		}
		return "Spotify track"
	case ServiceAppleMusic:
		if idx := strings.Index(url, "/album/"); idx >= 0 {
			slug := url[idx+len("/album/"):]
			if s := strings.IndexByte(slug, '/'); s >= 0 {
				slug = slug[:s]
			}
			if slug != "" && slug != "album" {
				words := strings.Split(slug, "-")
				for i, w := range words {
					if w != "" {
						words[i] = strings.ToUpper(w[:1]) + w[1:]
					}
				}
				return strings.Join(words, " ")
			}
		}
		return "Apple Music track"
	case ServiceSoundCloud:
		return "SoundCloud track"
	case ServiceDeezer:
		return "Deezer track"
	case ServiceTidal:
		return "Tidal track"
	case ServiceBandcamp:
		return "Bandcamp track"
	default:
		clean := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
		if len(clean) > 40 {
			return clean[:40] + "..."
		}
		return clean
	}
}

// QueueSnapshot is an atomic, wholesale view of the download queue at one
// instant. Counts come from the engine and are never recomputed client-side.
type QueueSnapshot struct {
	Jobs           []DownloadJob `json:"jobs"`
	ActiveCount    int           `json:"active_count"`
	QueuedCount    int           `json:"queued_count"`
	CompletedCount int           `json:"completed_count"`
	ErrorCount     int           `json:"error_count"`
	IsProcessing   bool          `json:"is_processing"`
}

// Job returns the job with the given id and whether it was found.
func (s QueueSnapshot) Job(id string) (DownloadJob, bool) {
	for _, j := range s.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return DownloadJob{}, false
}

// JobIDs returns the snapshot's job ids in display order.
func (s QueueSnapshot) JobIDs() []string {
	ids := make([]string, len(s.Jobs))
	for i, j := range s.Jobs {
		ids[i] = j.ID
	}
	return ids
}
