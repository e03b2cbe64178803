package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 30, 0, 123456789, time.UTC).Format(time.RFC3339Nano)

	token := EncodeCursor(createdAt, "txn-41")
	fields, err := DecodeCursor(token)

	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, createdAt, fields[0])
	assert.Equal(t, "txn-41", fields[1])
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64!!!")
	assert.Error(t, err)
}

func TestDecodeCursorKeepsEmptyFields(t *testing.T) {
	fields, err := DecodeCursor(EncodeCursor("", "txn-7"))

	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Empty(t, fields[0])
}
