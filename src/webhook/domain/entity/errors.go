package entity

import "errors"

var (
	ErrInvalidPayload      = errors.New("invalid webhook payload")
	ErrTrackingFailed      = errors.New("event tracking failed")
	ErrAnnotationFailed    = errors.New("order note update failed")
	ErrSchedulingSlugEmpty = errors.New("calendly event slug is empty")
	ErrEventTypeNotFound   = errors.New("calendly event type not found")
)
