package ai

import (
	"context"
	"fmt"
)

// Provider is a generative AI backend that can explain a piece of code.
// prompt is always set; imageBase64 is a data URL and is only set in
// vision mode, where the provider reads the code straight off the image.
type Provider interface {
	Explain(ctx context.Context, prompt string, imageBase64 string) (string, error)
	Name() string
}

// ServiceError is returned when a provider call fails for reasons outside
// this service: network, authentication, quota. The message is safe to
// surface to the mobile app as-is.
type ServiceError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func serviceErr(provider, message string, err error) *ServiceError {
	return &ServiceError{Provider: provider, Message: message, Err: err}
}
