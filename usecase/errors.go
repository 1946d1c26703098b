package usecase

import (
	"errors"
	"fmt"

	"github.com/satriahrh/arunika-assistant/domain/entities"
)

var (
	ErrEmptyQuestion      = validationError("question is required")
	ErrEmptyText          = validationError("text is required")
	ErrEmptyAudio         = validationError("audio data is required")
	ErrNothingToUpdate    = validationError("no fields to update")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", entities.ErrValidation, msg)
}
