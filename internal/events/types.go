// Package events carries the notifications exchanged with the outside world:
// server instances announcing themselves and the completion of a registration run.
package events

import (
	"errors"
)

// ErrInvalidEvent is returned when an event lacks required identifiers
var ErrInvalidEvent = errors.New("invalid event")

// ServerInstanceConnected announces that a server instance joined its server template
type ServerInstanceConnected struct {
	ServerInstanceID string `json:"serverInstanceId"`
	ServerTemplateID string `json:"serverTemplateId"`
}

// Validate checks that both identifiers are present
func (e ServerInstanceConnected) Validate() error {
	return validateIDs(e.ServerInstanceID, e.ServerTemplateID)
}

// DataSetRegistered reports that every pending definition was registered for a server instance
type DataSetRegistered struct {
	ServerInstanceID string `json:"serverInstanceId"`
	ServerTemplateID string `json:"serverTemplateId"`
}

// Validate checks that both identifiers are present
func (e DataSetRegistered) Validate() error {
	return validateIDs(e.ServerInstanceID, e.ServerTemplateID)
}

func validateIDs(instanceID, templateID string) error {
	var errs []error
	if instanceID == "" {
		errs = append(errs, errors.New("serverInstanceId is required"))
	}
	if templateID == "" {
		errs = append(errs, errors.New("serverTemplateId is required"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidEvent}, errs...)...)
	}
	return nil
}
