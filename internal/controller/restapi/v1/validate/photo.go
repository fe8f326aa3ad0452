package validate

import (
	"encoding/base64"
	"net/http"
	"strings"
)

var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ContentType sniffs the image type from the payload itself; client supplied
// content types are ignored.
func ContentType(data []byte) (string, bool) {
	ct := http.DetectContentType(data)

	return ct, AllowedContentTypes[ct]
}

// DecodePhoto accepts a data URL ("data:image/png;base64,...") or bare base64.
func DecodePhoto(value string) ([]byte, error) {
	payload := strings.TrimSpace(value)

	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 || !strings.HasSuffix(payload[:i], ";base64") {
			return nil, base64.CorruptInputError(0)
		}
		payload = payload[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, err
		}
	}

	return data, nil
}
