// Package media holds the uploaded image and its base64 forms.
package media

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

const fallbackContentType = "image/jpeg"

// AllowedExtensions is the client-side filter offered by the upload form.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png"}

type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Encode returns the standard base64 representation of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func Decode(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return data, nil
}

// DetectContentType sniffs the image type from its magic bytes. When the bytes
// are not a recognised image the declared type is used, and when that is not
// an image either the result is image/jpeg.
func DetectContentType(data []byte, declared string) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown && strings.HasPrefix(kind.MIME.Value, "image/") {
		return kind.MIME.Value
	}
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return fallbackContentType
}

// DataURI renders img as an inline data URI.
func DataURI(img Image) string {
	contentType := DetectContentType(img.Data, img.ContentType)
	return "data:" + contentType + ";base64," + Encode(img.Data)
}

// Extension picks the file extension used for the temporary copy of img.
func Extension(img Image) string {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if IsAllowedExtension(ext) {
		return ext
	}
	if kind, err := filetype.Match(img.Data); err == nil && kind != filetype.Unknown && kind.Extension != "" {
		return "." + kind.Extension
	}
	return ".jpg"
}

func IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
