package service

import (
	"path"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/postbridge/internal/models"
)

var eligibleExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpg": {}, "jpeg": {}, "png": {},
}

// NewMediaFile builds a MediaFile from a provider entry. ok is false when the
// extension is not on the allow-list.
func NewMediaFile(name, filePath string) (models.MediaFile, bool) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if _, ok := eligibleExtensions[ext]; !ok {
		return models.MediaFile{}, false
	}

	return models.MediaFile{
		Name: name,
		Path: filePath,
		Ext:  ext,
		MIME: mimeForExt(ext),
	}, true
}

// FilterEligible keeps provider order.
func FilterEligible(names []string) []string {
	var eligible []string
	for _, name := range names {
		if _, ok := NewMediaFile(name, name); ok {
			eligible = append(eligible, name)
		}
	}
	return eligible
}

func mimeForExt(ext string) string {
	if ext == "jpeg" {
		ext = "jpg"
	}
	t := filetype.GetType(ext)
	if t == types.Unknown {
		return "application/octet-stream"
	}
	return t.MIME.Value
}
