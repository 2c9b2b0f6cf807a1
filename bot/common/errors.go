package common

import (
	"errors"
	"fmt"

	"lottery/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Ephemeral   bool   // Whether the error message should be ephemeral
	Err         error  // Underlying error
	Context     any    // Additional context for logging
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (bad passcode, bad count, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (storage, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// DrawError translates a draw engine error into a BotError
func DrawError(err error) *BotError {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}

	userErr := func(message string) *BotError {
		e := NewUserError(message, "draw request rejected")
		e.Err = err
		return e
	}

	switch {
	case errors.Is(err, entities.ErrUnauthorized):
		return userErr("Invalid passcode. Access denied.")
	case errors.Is(err, entities.ErrAlreadyDrawn):
		return userErr("A draw has already been conducted for this round. Use `/lottery winners` to see the result.")
	case errors.Is(err, entities.ErrNotLocked):
		return userErr("No draw has been conducted for this round yet.")
	case errors.Is(err, entities.ErrInvalidRequest):
		return userErr("The number of winners must be between 1 and the roster size.")
	case errors.Is(err, entities.ErrMissingData):
		return userErr("The members roster is not available. Ask an administrator to upload it.")
	default:
		return NewSystemError(err, "draw operation failed")
	}
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError processes a BotError and responds appropriately
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	message := "Something went wrong. Please try again later."

	var botErr *BotError
	if errors.As(err, &botErr) {
		log.WithFields(log.Fields{
			"user_id":      UserID(i),
			"command":      i.ApplicationCommandData().Name,
			"error":        botErr.Error(),
			"user_message": botErr.UserMessage,
			"context":      botErr.Context,
		}).Warn(botErr.LogMessage)
		message = botErr.UserMessage
	} else {
		log.WithFields(log.Fields{
			"user_id": UserID(i),
			"command": i.ApplicationCommandData().Name,
			"error":   err.Error(),
		}).Error("Unexpected error in bot command")
	}

	if deferred {
		FollowUpWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}

// UserID returns the invoking user's ID for guild and DM interactions
func UserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
