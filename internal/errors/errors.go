// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrRecipientNotFound means a tracking request named a recipient that is
// not part of the campaign snapshot.
type ErrRecipientNotFound struct {
	CampaignID  string
	RecipientID string
}

func (e *ErrRecipientNotFound) Error() string {
	return fmt.Sprintf("recipient %s not found in campaign %s", e.RecipientID, e.CampaignID)
}

func NewRecipientNotFound(campaignID, recipientID string) error {
	return &ErrRecipientNotFound{CampaignID: campaignID, RecipientID: recipientID}
}

// ConfigurationError is fatal at startup: the process must not reach the
// polling loop with missing or malformed credentials.
type ConfigurationError struct {
	Fields []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Fields)
}

func NewConfigurationError(fields ...string) error {
	return &ConfigurationError{Fields: fields}
}

// TransientDeliveryError is retried, bounded by the attempt cap.
type TransientDeliveryError struct {
	Email string
	Cause error
}

func (e *TransientDeliveryError) Error() string {
	return fmt.Sprintf("transient delivery failure for %s: %v", e.Email, e.Cause)
}

func (e *TransientDeliveryError) Unwrap() error { return e.Cause }

func NewTransientDelivery(email string, cause error) error {
	return &TransientDeliveryError{Email: email, Cause: cause}
}

// PermanentDeliveryError is terminal: the recipient is hard-bounced and
// excluded from future claims without consuming remaining attempts.
type PermanentDeliveryError struct {
	Email string
	Cause error
}

func (e *PermanentDeliveryError) Error() string {
	return fmt.Sprintf("permanent delivery failure for %s: %v", e.Email, e.Cause)
}

func (e *PermanentDeliveryError) Unwrap() error { return e.Cause }

func NewPermanentDelivery(email string, cause error) error {
	return &PermanentDeliveryError{Email: email, Cause: cause}
}

// PersistenceError is a store write failure for a single recipient. It is
// reported but never aborts the rest of the batch.
type PersistenceError struct {
	Email string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure for %s: %v", e.Email, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

func NewPersistence(email string, cause error) error {
	return &PersistenceError{Email: email, Cause: cause}
}

// ValidationError means the address never enters the delivery state machine.
type ValidationError struct {
	Email  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid recipient %s: %s", e.Email, e.Reason)
}

func NewValidation(email, reason string) error {
	return &ValidationError{Email: email, Reason: reason}
}

// IsPermanent reports whether err classifies as a permanent delivery failure.
func IsPermanent(err error) bool {
	var perm *PermanentDeliveryError
	return errors.As(err, &perm)
}

// IsNotFound reports whether err is a campaign or recipient lookup miss.
func IsNotFound(err error) bool {
	var c *ErrCampaignNotFound
	var r *ErrRecipientNotFound
	return errors.As(err, &c) || errors.As(err, &r)
}
