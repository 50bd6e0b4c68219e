package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/giodelapiedra/backend-sub011/internal/assignment/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentCursorRoundTrip(t *testing.T) {
	original := &storage.Cursor{
		CreatedAt: time.Date(2024, 6, 15, 2, 30, 45, 123456789, time.UTC),
		ID:        "0d9f6f5e-1b1a-4d0e-9db1-7a3c2a6f4e21",
	}

	encoded := EncodeAssignmentCursor(original)
	assert.NotContains(t, encoded, "|", "cursor must be opaque")

	decoded, err := DecodeAssignmentCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.True(t, decoded.CreatedAt.Equal(original.CreatedAt))
	assert.Equal(t, original.ID, decoded.ID)
}

func TestDecodeAssignmentCursor_Empty(t *testing.T) {
	decoded, err := DecodeAssignmentCursor("")
	require.NoError(t, err)
	assert.Nil(t, decoded, "empty cursor means first page")
}

func TestDecodeAssignmentCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{name: "not base64", cursor: "!!!not-base64!!!"},
		{name: "missing separator", cursor: base64.StdEncoding.EncodeToString([]byte("justonefield"))},
		{name: "too many fields", cursor: base64.StdEncoding.EncodeToString([]byte("1|2|3"))},
		{name: "non-numeric timestamp", cursor: base64.StdEncoding.EncodeToString([]byte("abc|some-id"))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeAssignmentCursor(tc.cursor)
			assert.Error(t, err)
		})
	}
}
