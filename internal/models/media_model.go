package models

type MediaType string

const (
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeTextPost MediaType = "TEXT_POST"
)

type MediaFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Ext  string `json:"ext"`
	MIME string `json:"mime"`
}

// IsVideo reports whether the file is posted as a Threads video.
func (f MediaFile) IsVideo() bool {
	return f.Ext == "mp4" || f.Ext == "mov"
}

type PostResult struct {
	Succeeded  bool      `json:"succeeded"`
	StatusCode int       `json:"status_code"`
	Body       string    `json:"body,omitempty"`
	MediaType  MediaType `json:"media_type"`
	Err        error     `json:"-"`
}
