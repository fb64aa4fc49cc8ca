package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	catalogerrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/schema"
)

type cursorKey struct {
	ID string `json:"id"`
}

// encodeCursor turns the last returned id into an opaque page cursor.
func encodeCursor(lastID string) string {
	if lastID == "" {
		return ""
	}
	data, _ := json.Marshal(cursorKey{ID: lastID})
	return base64.RawURLEncoding.EncodeToString(data)
}

// decodeCursor returns the id a cursor points past. An empty cursor decodes to "".
func decodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %v", catalogerrors.ErrInvalidCursor, err)
	}
	var key cursorKey
	if err := json.Unmarshal(data, &key); err != nil || key.ID == "" || !schema.KeyFits(key.ID) {
		return "", catalogerrors.ErrInvalidCursor
	}
	return key.ID, nil
}
