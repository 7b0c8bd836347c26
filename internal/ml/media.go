package ml

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidImage means an image field is not valid base64 image data.
var ErrInvalidImage = errors.New("invalid image")

// DecodeImage decodes a base64 image or a data URL
// (data:image/png;base64,....). The MIME type comes from the data URL or is
// sniffed from the bytes.
func DecodeImage(s string) (Media, error) {
	s = strings.TrimSpace(s)
	mimeType := ""

	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return Media{}, fmt.Errorf("%w: unsupported data URL", ErrInvalidImage)
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return Media{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return Media{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	if mimeType == "" {
		mimeType = sniffImageType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Media{}, fmt.Errorf("%w: content type %s", ErrInvalidImage, mimeType)
	}
	return Media{MIMEType: mimeType, Data: data}, nil
}

// sniffImageType extends http.DetectContentType with the HEIF family, which it
// reports as application/octet-stream.
func sniffImageType(data []byte) string {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		switch string(data[8:12]) {
		case "heic", "heix", "heim", "heis":
			return "image/heic"
		case "mif1", "msf1", "heif":
			return "image/heif"
		}
	}
	return http.DetectContentType(data)
}
