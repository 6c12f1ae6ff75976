package envelope

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidHeader is returned by DecodeHeader for values that are not base64.
var ErrInvalidHeader = errors.New("edge request header is not valid base64")

// EncodeHeader renders header bytes for text transports such as HTTP headers.
func EncodeHeader(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeHeader reverses EncodeHeader. Unpadded and URL-safe input is accepted
// because some proxies rewrite header values.
func DecodeHeader(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	for _, encoding := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err := encoding.DecodeString(value); err == nil {
			return data, nil
		}
	}

	return nil, ErrInvalidHeader
}
