package lottery

import (
	"bytes"
	"context"

	"lottery/bot/common"
	"lottery/domain/entities"
	"lottery/domain/interfaces"
	"lottery/events"
	"lottery/export"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature serves the /lottery slash command
type Feature struct {
	engine     interfaces.DrawEngine
	authorizer interfaces.Authorizer
	exporter   interfaces.Exporter
	limiter    *common.AttemptLimiter
	publisher  interfaces.EventPublisher
}

// NewFeature creates a new lottery feature instance
func NewFeature(
	engine interfaces.DrawEngine,
	authorizer interfaces.Authorizer,
	exporter interfaces.Exporter,
	limiter *common.AttemptLimiter,
	publisher interfaces.EventPublisher,
) *Feature {
	return &Feature{
		engine:     engine,
		authorizer: authorizer,
		exporter:   exporter,
		limiter:    limiter,
		publisher:  publisher,
	}
}

// reply is a rendered command outcome, independent of the Discord session
type reply struct {
	embed       *discordgo.MessageEmbed
	attachments []common.Attachment
	ephemeral   bool
}

// authorizeOperator throttles the caller and then checks the operator passcode
func (f *Feature) authorizeOperator(userID, passcode string) error {
	if f.limiter != nil && !f.limiter.Allow(userID) {
		return common.NewUserError(
			"Too many passcode attempts. Please wait a minute and try again.",
			"passcode attempt throttled",
		)
	}

	if !f.authorizer.CheckOperator(passcode) {
		if f.publisher != nil {
			if err := f.publisher.Publish(events.AuthorizationFailedEvent{Role: "operator"}); err != nil {
				log.WithError(err).Warn("Failed to publish authorization failure")
			}
		}
		botErr := common.NewUserError("Invalid passcode. Access denied.", "operator passcode rejected")
		botErr.Err = entities.ErrUnauthorized
		botErr.Context = log.Fields{"user_id": userID}
		return botErr
	}

	return nil
}

// status renders the public round overview
func (f *Feature) status(ctx context.Context) (*reply, error) {
	state, err := f.engine.Status(ctx)
	if err != nil {
		return nil, common.DrawError(err)
	}
	return &reply{embed: CreateStatusEmbed(f.engine.Roster(), state)}, nil
}

// draw runs the one-time draw for an authorized operator
func (f *Feature) draw(ctx context.Context, userID, passcode string, count int) (*reply, error) {
	if err := f.authorizeOperator(userID, passcode); err != nil {
		return nil, err
	}

	result, err := f.engine.PickWinners(ctx, entities.DrawRequest{RequestedCount: count})
	if err != nil {
		return nil, common.DrawError(err)
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"result_id": result.ID,
		"winners":   len(result.Winners),
	}).Info("Draw conducted from Discord")

	return &reply{
		embed:       CreateDrawResultEmbed(result),
		attachments: f.attachments(result),
	}, nil
}

// winners shows the committed result to an authorized operator
func (f *Feature) winners(ctx context.Context, userID, passcode string) (*reply, error) {
	if err := f.authorizeOperator(userID, passcode); err != nil {
		return nil, err
	}

	result, err := f.engine.CurrentResult(ctx)
	if err != nil {
		return nil, common.DrawError(err)
	}

	return &reply{
		embed:       CreatePreviousWinnersEmbed(result),
		attachments: f.attachments(result),
		ephemeral:   true,
	}, nil
}

// reset clears the lock; the operator passcode gates access and the engine
// checks the reset passcode
func (f *Feature) reset(ctx context.Context, userID, passcode, resetPasscode string) (*reply, error) {
	if err := f.authorizeOperator(userID, passcode); err != nil {
		return nil, err
	}

	if err := f.engine.Reset(ctx, resetPasscode); err != nil {
		return nil, common.DrawError(err)
	}

	log.WithField("user_id", userID).Info("Draw reset from Discord")
	return &reply{embed: CreateResetEmbed()}, nil
}

// attachments exports the result; a failed export only drops the file
func (f *Feature) attachments(result *entities.DrawResult) []common.Attachment {
	if f.exporter == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := f.exporter.Export(&buf, result); err != nil {
		log.WithError(err).WithField("result_id", result.ID).Error("Failed to export winners")
		return nil
	}

	return []common.Attachment{{
		Name:        export.FileName(f.exporter),
		ContentType: f.exporter.ContentType(),
		Reader:      &buf,
	}}
}

