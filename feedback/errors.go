package feedback

import "errors"

// Feedback errors.
var (
	// ErrInvalidRating indicates a rating outside the accepted [1,5] range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
