package forum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCursor(t *testing.T) {
	tests := []struct {
		name    string
		cursor  string
		want    *time.Time
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"blank", "  ", nil, false},
		{"epoch", "0", ptr(time.UnixMilli(0).UTC()), false},
		{"millis", "1700000000123", ptr(time.UnixMilli(1700000000123).UTC()), false},
		{"last supported", "253402300799999", ptr(time.UnixMilli(253402300799999).UTC()), false},
		{"not a number", "yesterday", nil, true},
		{"negative", "-1", nil, true},
		{"past year 9999", "99999999999999999", nil, true},
		{"overflows int64", "99999999999999999999", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCursor(tt.cursor)
			if tt.wantErr {
				var inputErr *InputError
				require.ErrorAs(t, err, &inputErr)
				assert.Equal(t, "cursor", inputErr.Field)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCursor_RoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 123_000_000, time.UTC)
	got, err := ParseCursor(FormatCursor(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(*got))
}

func TestPosts_OutOfRangeCursorIsInvalidInput(t *testing.T) {
	s, _ := newTestService(t)
	mustPost(t, s, 1, "general")

	_, err := s.Posts(context.Background(), PostFeedRequest{Limit: 10, Cursor: "99999999999999999"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrTransactionFailed)

	_, err = s.Replies(context.Background(), ReplyFeedRequest{Limit: 10, Cursor: "99999999999999999", PostID: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
