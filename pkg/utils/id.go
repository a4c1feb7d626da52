package utils

import (
	"github.com/google/uuid"
)

// NewActionID returns a random identifier for a scattering action
func NewActionID() string {
	return "act-" + uuid.NewString()
}

// NewParticleID returns a random identifier for a produced particle
func NewParticleID() string {
	return uuid.NewString()
}

// NewRunID returns a random identifier for a batch run
func NewRunID() string {
	return "run-" + uuid.NewString()
}
