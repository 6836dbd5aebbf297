package storage

import (
	"errors"
	"fmt"

	"github.com/mmynk/bistro/internal/models"
)

// Classify passes models.ErrNotFound through and reports any other store
// failure as models.ErrStorageUnavailable, keeping the cause in the chain.
func Classify(op string, err error) error {
	if err == nil || errors.Is(err, models.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrStorageUnavailable, err)
}
