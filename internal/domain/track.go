package domain

type TrackID string

// Track is immutable once imported; the resolver that produced the
// playable URL (or deferred video id) lives outside this process.
type Track struct {
	ID       TrackID `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Artist   string  `json:"artist,omitempty"`
	VideoID  string  `json:"video_id,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
}
