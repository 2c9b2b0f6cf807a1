package lottery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"lottery/bot/common"
	"lottery/domain/entities"
	"lottery/domain/services"
	"lottery/domain/testhelpers"
	"lottery/events"
	"lottery/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	operatorPass = "operator-pass"
	resetPass    = "reset-pass"
)

type featureFixture struct {
	feature   *Feature
	store     *testhelpers.MemoryResultStore
	publisher *testhelpers.RecordingPublisher
}

func newFeatureFixture(t *testing.T, rosterSize int, limiter *common.AttemptLimiter) *featureFixture {
	t.Helper()
	store := testhelpers.NewMemoryResultStore()
	publisher := &testhelpers.RecordingPublisher{}
	authorizer := services.NewAuthorizer(operatorPass, resetPass)
	engine := services.NewDrawEngine(testhelpers.NewRoster(rosterSize), store, authorizer, publisher)

	return &featureFixture{
		feature:   NewFeature(engine, authorizer, export.NewCSVExporter(), limiter, publisher),
		store:     store,
		publisher: publisher,
	}
}

func requireBotError(t *testing.T, err error) *common.BotError {
	t.Helper()
	require.Error(t, err)
	var botErr *common.BotError
	require.True(t, errors.As(err, &botErr), "expected BotError, got %T", err)
	return botErr
}

func TestFeature_Status(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFeatureFixture(t, 3, nil)

	r, err := f.feature.status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3", r.embed.Fields[0].Value)
	assert.Equal(t, "🔓 Open", r.embed.Fields[1].Value)
	assert.Contains(t, r.embed.Fields[2].Value, "Member 1 (`P1`)")
	assert.False(t, r.ephemeral)

	_, err = f.feature.draw(ctx, "user-1", operatorPass, 1)
	require.NoError(t, err)

	r, err = f.feature.status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "🔒 Drawn", r.embed.Fields[1].Value)
}

func TestFeature_Draw(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("authorized draw attaches export", func(t *testing.T) {
		t.Parallel()
		f := newFeatureFixture(t, 5, nil)

		r, err := f.feature.draw(ctx, "user-1", operatorPass, 2)
		require.NoError(t, err)
		assert.Equal(t, "🎉 Winners Selected!", r.embed.Title)
		assert.Equal(t, "2 of 5 members", r.embed.Fields[0].Value)
		assert.Equal(t, 1, f.store.Commits())

		require.Len(t, r.attachments, 1)
		assert.Equal(t, "lottery_winners.csv", r.attachments[0].Name)
		body, err := io.ReadAll(r.attachments[0].Reader)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Rank,ID,Name")
	})

	t.Run("wrong passcode never reaches the engine", func(t *testing.T) {
		t.Parallel()
		f := newFeatureFixture(t, 5, nil)

		_, err := f.feature.draw(ctx, "user-1", "guess", 2)
		botErr := requireBotError(t, err)
		assert.Contains(t, botErr.UserMessage, "Invalid passcode")
		assert.ErrorIs(t, err, entities.ErrUnauthorized)
		assert.Equal(t, 0, f.store.Commits())
		assert.Equal(t, []events.EventType{events.EventTypeAuthorizationFailed}, f.publisher.Types())
	})

	t.Run("second draw is refused", func(t *testing.T) {
		t.Parallel()
		f := newFeatureFixture(t, 5, nil)

		_, err := f.feature.draw(ctx, "user-1", operatorPass, 2)
		require.NoError(t, err)

		_, err = f.feature.draw(ctx, "user-1", operatorPass, 2)
		botErr := requireBotError(t, err)
		assert.ErrorIs(t, err, entities.ErrAlreadyDrawn)
		assert.Contains(t, botErr.UserMessage, "already been conducted")
		assert.Equal(t, 1, f.store.Commits())
	})

	t.Run("count out of range", func(t *testing.T) {
		t.Parallel()
		f := newFeatureFixture(t, 5, nil)

		for _, count := range []int{0, 6, -1} {
			_, err := f.feature.draw(ctx, "user-1", operatorPass, count)
			assert.ErrorIs(t, err, entities.ErrInvalidRequest, fmt.Sprintf("count %d", count))
		}
		assert.Equal(t, 0, f.store.Commits())
	})

	t.Run("throttled before the passcode is checked", func(t *testing.T) {
		t.Parallel()
		limiter := common.NewAttemptLimiter(1, 2)
		f := newFeatureFixture(t, 5, limiter)

		for range 2 {
			_, err := f.feature.draw(ctx, "user-1", "guess", 1)
			assert.ErrorIs(t, err, entities.ErrUnauthorized)
		}

		_, err := f.feature.draw(ctx, "user-1", operatorPass, 1)
		botErr := requireBotError(t, err)
		assert.Contains(t, botErr.UserMessage, "Too many passcode attempts")
		assert.Equal(t, 0, f.store.Commits())
		assert.Len(t, f.publisher.Types(), 2)

		// other callers are unaffected
		_, err = f.feature.draw(ctx, "user-2", operatorPass, 1)
		assert.NoError(t, err)
	})
}

func TestFeature_Winners(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFeatureFixture(t, 4, nil)

	_, err := f.feature.winners(ctx, "user-1", operatorPass)
	assert.ErrorIs(t, err, entities.ErrNotLocked)

	drawn, err := f.feature.draw(ctx, "user-1", operatorPass, 3)
	require.NoError(t, err)

	r, err := f.feature.winners(ctx, "user-1", operatorPass)
	require.NoError(t, err)
	assert.True(t, r.ephemeral)
	assert.Equal(t, "🎉 Previous Winners", r.embed.Title)
	assert.Equal(t, drawn.embed.Fields[2].Value, r.embed.Fields[2].Value)
	assert.Len(t, r.attachments, 1)

	_, err = f.feature.winners(ctx, "user-1", "guess")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestFeature_Reset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFeatureFixture(t, 4, nil)

	_, err := f.feature.draw(ctx, "user-1", operatorPass, 1)
	require.NoError(t, err)

	_, err = f.feature.reset(ctx, "user-1", operatorPass, "guess")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	r, err := f.feature.reset(ctx, "user-1", operatorPass, resetPass)
	require.NoError(t, err)
	assert.Equal(t, "🔄 Round Reset", r.embed.Title)

	_, err = f.feature.reset(ctx, "user-1", operatorPass, resetPass)
	assert.ErrorIs(t, err, entities.ErrNotLocked)

	_, err = f.feature.draw(ctx, "user-1", operatorPass, 1)
	assert.NoError(t, err)
}

type failingExporter struct{}

func (failingExporter) Export(w io.Writer, result *entities.DrawResult) error {
	return errors.New("disk full")
}
func (failingExporter) ContentType() string   { return "text/csv" }
func (failingExporter) FileExtension() string { return "csv" }

func TestFeature_ExportFailureKeepsResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFeatureFixture(t, 3, nil)
	f.feature.exporter = failingExporter{}

	r, err := f.feature.draw(ctx, "user-1", operatorPass, 1)
	require.NoError(t, err)
	assert.Empty(t, r.attachments)
	assert.Equal(t, 1, f.store.Commits())
}

func TestCreateStatusEmbed_EmptyRoster(t *testing.T) {
	t.Parallel()

	embed := CreateStatusEmbed(entities.Roster{}, entities.DrawStateUnlocked)
	assert.Equal(t, common.ColorDanger, embed.Color)
	assert.Equal(t, "0", embed.Fields[0].Value)
	assert.Equal(t, "_none_", embed.Fields[2].Value)
}

func TestCreateDrawResultEmbed(t *testing.T) {
	t.Parallel()

	roster := testhelpers.NewRoster(3)
	result := entities.NewDrawResult(roster.Participants[:2], roster.Columns, 3, time.Unix(1700000000, 0))

	embed := CreateDrawResultEmbed(result)
	assert.Equal(t, common.ColorSuccess, embed.Color)
	assert.Equal(t, "<t:1700000000:f>", embed.Fields[1].Value)
	assert.Equal(t, "**1.** Member 1 (`P1`)\n**2.** Member 2 (`P2`)", embed.Fields[2].Value)
	assert.Contains(t, embed.Footer.Text, result.ID.String())
}
