package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/storage"
)

// DecodeAssignmentCursor parses an opaque pagination cursor. An empty
// cursor means the first page.
func DecodeAssignmentCursor(cursorStr string) (*storage.Cursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	var createdAt int64
	if _, err := fmt.Sscanf(parts[0], "%d", &createdAt); err != nil {
		return nil, fmt.Errorf("invalid createdAt in cursor: %w", err)
	}

	return &storage.Cursor{
		CreatedAt: time.Unix(0, createdAt),
		ID:        parts[1],
	}, nil
}

// EncodeAssignmentCursor renders a pagination position as an opaque string
func EncodeAssignmentCursor(cursor *storage.Cursor) string {
	cs := fmt.Sprintf("%d|%s", cursor.CreatedAt.UnixNano(), cursor.ID)
	return base64.StdEncoding.EncodeToString([]byte(cs))
}
