package social

import "github.com/goliatone/go-errors"

const (
	TextCodeProviderNotFound = "social_provider_not_found"
	TextCodeNotImplemented   = "social_not_implemented"
)

// ErrProviderNotFound is returned when a requested provider is not configured.
var ErrProviderNotFound = errors.New("social provider not found", errors.CategoryNotFound).
	WithTextCode(TextCodeProviderNotFound).
	WithCode(errors.CodeNotFound)

// ErrNotImplemented is returned while the provider flows are placeholders.
var ErrNotImplemented = errors.New("not implemented yet", errors.CategoryOperation).
	WithTextCode(TextCodeNotImplemented)
