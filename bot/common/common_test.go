package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"lottery/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptLimiter(t *testing.T) {
	t.Parallel()

	t.Run("burst then reject", func(t *testing.T) {
		t.Parallel()
		clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewAttemptLimiter(6, 2)
		limiter.now = func() time.Time { return clock }

		assert.True(t, limiter.Allow("user-1"))
		assert.True(t, limiter.Allow("user-1"))
		assert.False(t, limiter.Allow("user-1"))

		// 6 per minute refills one token every 10 seconds
		clock = clock.Add(10 * time.Second)
		assert.True(t, limiter.Allow("user-1"))
		assert.False(t, limiter.Allow("user-1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		limiter := NewAttemptLimiter(1, 1)

		assert.True(t, limiter.Allow("user-1"))
		assert.False(t, limiter.Allow("user-1"))
		assert.True(t, limiter.Allow("user-2"))
	})

	t.Run("prune drops idle keys", func(t *testing.T) {
		t.Parallel()
		clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		limiter := NewAttemptLimiter(1, 1)
		limiter.now = func() time.Time { return clock }

		limiter.Allow("old")
		clock = clock.Add(time.Hour)
		limiter.Allow("fresh")

		assert.Equal(t, 1, limiter.Prune(30*time.Minute))
		assert.Len(t, limiter.limiters, 1)
		assert.Contains(t, limiter.limiters, "fresh")
	})
}

func TestDrawError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		contains  string
		hasSystem bool
	}{
		{"unauthorized", fmt.Errorf("reset: %w", entities.ErrUnauthorized), "Invalid passcode", false},
		{"already drawn", entities.ErrAlreadyDrawn, "already been conducted", false},
		{"not locked", entities.ErrNotLocked, "No draw has been conducted", false},
		{"invalid request", entities.ErrInvalidRequest, "between 1 and the roster size", false},
		{"missing data", entities.ErrMissingData, "roster is not available", false},
		{"store failure", fmt.Errorf("commit: %w", entities.ErrStoreUnavailable), "Something went wrong", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			botErr := DrawError(tt.err)
			require.NotNil(t, botErr)
			assert.Contains(t, botErr.UserMessage, tt.contains)
			assert.True(t, botErr.Ephemeral)
			assert.True(t, errors.Is(botErr, tt.err))
		})
	}

	t.Run("bot errors pass through", func(t *testing.T) {
		t.Parallel()
		original := NewUserError("Too many attempts", "throttled")
		assert.Same(t, original, DrawError(fmt.Errorf("wrapped: %w", original)))
	})
}

func TestFormatRankedList(t *testing.T) {
	t.Parallel()

	participants := []entities.Participant{
		{ID: "M001", Name: "Ada"},
		{ID: "M002"},
		{ID: "M003", Name: "Grace"},
	}

	t.Run("full list in draw order", func(t *testing.T) {
		t.Parallel()
		got := FormatRankedList(participants, MaxFieldValueChars)
		assert.Equal(t, "**1.** Ada (`M001`)\n**2.** `M002`\n**3.** Grace (`M003`)", got)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "_none_", FormatRankedList(nil, MaxFieldValueChars))
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		many := make([]entities.Participant, 200)
		for i := range many {
			many[i] = entities.Participant{ID: fmt.Sprintf("M%03d", i+1), Name: "Participant"}
		}

		got := FormatRankedList(many, MaxFieldValueChars)
		assert.LessOrEqual(t, len(got), MaxFieldValueChars)
		assert.True(t, strings.HasPrefix(got, "**1.** Participant (`M001`)"))
		assert.Regexp(t, `\.\.\.and \d+ more$`, got)
	})
}

func TestFormatCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,000", FormatCount(1000))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "-12,345", FormatCount(-12345))
}

func TestFormatDiscordTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "<t:1700000000:F>", FormatDiscordTimestamp(ts, "F"))
}
