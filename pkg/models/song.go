package models

// Source tag values for Song.Source.
const (
	SourceLocal   = "local"
	SourceJamendo = "jamendo"
)

// Song represents a library entry. Local songs have their audio in the
// file store and their metadata in the remote songs collection; catalog
// songs are ephemeral search results and are never persisted.
type Song struct {
	Title    string `firestore:"title" json:"title"`
	Artist   string `firestore:"artist" json:"artist"`
	Filename string `firestore:"filename" json:"filename"` // empty for catalog tracks
	Uploader string `firestore:"uploader" json:"uploader"`
	Duration int    `firestore:"duration,omitempty" json:"duration,omitempty"` // seconds, 0 when unknown

	// Display-only fields, never written to the metadata store.
	Source   string `firestore:"-" json:"source"`
	TrackID  string `firestore:"-" json:"trackId,omitempty"`  // catalog identifier
	AudioURL string `firestore:"-" json:"audioUrl,omitempty"` // external stream URL for catalog tracks
	ArtURL   string `firestore:"-" json:"artUrl,omitempty"`
}

// StreamURL returns the URL an <audio> element should play this song from.
func (s Song) StreamURL() string {
	if s.Source == SourceJamendo {
		return s.AudioURL
	}
	return "/songs/" + s.Filename
}
