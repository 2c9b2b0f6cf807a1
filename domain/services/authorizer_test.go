package services

import (
	"testing"

	"lottery/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizer_CheckOperator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret string
		input  string
		want   bool
	}{
		{name: "matching passcode", secret: "EGSA2025!", input: "EGSA2025!", want: true},
		{name: "wrong passcode", secret: "EGSA2025!", input: "egsa2025!", want: false},
		{name: "prefix of passcode", secret: "EGSA2025!", input: "EGSA", want: false},
		{name: "empty input", secret: "EGSA2025!", input: "", want: false},
		{name: "unset secret denies empty input", secret: "", input: "", want: false},
		{name: "unset secret denies any input", secret: "", input: "anything", want: false},
		{name: "whitespace secret is a real passcode", secret: "   ", input: "   ", want: true},
		{name: "whitespace secret rejects empty input", secret: "   ", input: "", want: false},
		{name: "whitespace secret rejects trimmed input", secret: " pass ", input: "pass", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			auth := NewAuthorizer(tt.secret, "reset-secret")
			assert.Equal(t, tt.want, auth.CheckOperator(tt.input))
		})
	}
}

func TestAuthorizer_CheckReset(t *testing.T) {
	t.Parallel()

	auth := NewAuthorizer("operator-secret", "reset-secret")

	assert.True(t, auth.CheckReset("reset-secret"))
	assert.False(t, auth.CheckReset("operator-secret"))
	assert.False(t, auth.CheckOperator("reset-secret"))

	unset := NewAuthorizer("operator-secret", "")
	assert.False(t, unset.CheckReset(""))
	assert.False(t, unset.CheckReset("reset-secret"))
}

func TestAuthorizer_Warnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		operator string
		reset    string
		want     []error
	}{
		{name: "both configured", operator: "a", reset: "b", want: nil},
		{name: "operator missing", operator: "", reset: "b", want: []error{entities.ErrOperatorSecretUnset}},
		{name: "reset missing", operator: "a", reset: "", want: []error{entities.ErrResetSecretUnset}},
		{name: "both missing", operator: "", reset: "", want: []error{entities.ErrOperatorSecretUnset, entities.ErrResetSecretUnset}},
		{name: "whitespace is configured", operator: " ", reset: "\t", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			auth := NewAuthorizer(tt.operator, tt.reset)
			assert.Equal(t, tt.want, auth.Warnings())
		})
	}
}
