package filegate

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// pageToken is the state carried between list calls. The backend cursor is
// kept opaque; prefix and page size pin the listing the cursor belongs to.
type pageToken struct {
	Cursor   string `json:"c"`
	Prefix   string `json:"p,omitempty"`
	PageSize int    `json:"n"`
}

func encodePageToken(t pageToken) string {
	data, _ := json.Marshal(t)
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodePageToken(s string) (pageToken, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return pageToken{}, fmt.Errorf("decode page token: invalid encoding: %w", err)
	}

	var t pageToken
	if err := json.Unmarshal(data, &t); err != nil {
		return pageToken{}, fmt.Errorf("decode page token: invalid format: %w", err)
	}

	if t.Cursor == "" {
		return pageToken{}, errors.New("decode page token: empty cursor")
	}

	if t.PageSize < 1 {
		return pageToken{}, fmt.Errorf("decode page token: invalid page size %d", t.PageSize)
	}

	return t, nil
}
