package services

import (
	"crypto/hmac"
	"crypto/sha256"

	"lottery/domain/entities"
	"lottery/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// passcode holds the digest of a configured secret. Comparing fixed-size
// digests keeps the check constant-time regardless of input length.
type passcode struct {
	digest []byte
	set    bool
}

func newPasscode(secret string) passcode {
	if secret == "" {
		return passcode{}
	}
	sum := sha256.Sum256([]byte(secret))
	return passcode{digest: sum[:], set: true}
}

func (p passcode) matches(input string) bool {
	if !p.set {
		return false
	}
	sum := sha256.Sum256([]byte(input))
	return hmac.Equal(sum[:], p.digest)
}

// authorizer implements interfaces.Authorizer against two flat secrets
type authorizer struct {
	operator passcode
	reset    passcode
}

// NewAuthorizer creates an authorizer. Secrets are compared exactly as given,
// so only the empty string counts as unset. An unset secret is not an error:
// the matching check fails closed and a warning is logged here, once.
func NewAuthorizer(operatorSecret, resetSecret string) interfaces.Authorizer {
	a := &authorizer{
		operator: newPasscode(operatorSecret),
		reset:    newPasscode(resetSecret),
	}
	for _, w := range a.Warnings() {
		log.WithError(w).Warn("Passcode not configured, access will be denied")
	}
	return a
}

// CheckOperator returns true iff input matches the operator passcode
func (a *authorizer) CheckOperator(input string) bool {
	if !a.operator.set {
		log.Warn("Operator access requested but no operator passcode is configured")
		return false
	}
	return a.operator.matches(input)
}

// CheckReset returns true iff input matches the reset passcode
func (a *authorizer) CheckReset(input string) bool {
	if !a.reset.set {
		log.Warn("Reset requested but no reset passcode is configured")
		return false
	}
	return a.reset.matches(input)
}

// Warnings lists unset passcodes
func (a *authorizer) Warnings() []error {
	var warnings []error
	if !a.operator.set {
		warnings = append(warnings, entities.ErrOperatorSecretUnset)
	}
	if !a.reset.set {
		warnings = append(warnings, entities.ErrResetSecretUnset)
	}
	return warnings
}
