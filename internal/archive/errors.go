package archive

import (
	"errors"
	"fmt"

	"channelsurfer/internal/services"
	"channelsurfer/internal/textutil"
)

// ErrAPIResponse marks payloads where the archive answered with an error
// object instead of results.
var ErrAPIResponse = errors.New("archive api error")

// excerptLimit bounds the raw input echoed back in decode diagnostics.
const excerptLimit = 200

// DecodeKind distinguishes structural failures from API error payloads.
type DecodeKind int

const (
	DecodeStructural DecodeKind = iota
	DecodeAPI
)

func (k DecodeKind) String() string {
	if k == DecodeAPI {
		return "api"
	}
	return "structural"
}

// DecodeError reports a payload that could not be turned into a response.
// It unwraps to services.ErrDecode, and to ErrAPIResponse for API payloads.
type DecodeError struct {
	Kind    DecodeKind
	Message string
	Excerpt string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Kind == DecodeAPI {
		return fmt.Sprintf("archive returned error: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("decode archive payload: %s: %v (input: %q)", e.Message, e.Err, e.Excerpt)
	}
	return fmt.Sprintf("decode archive payload: %s (input: %q)", e.Message, e.Excerpt)
}

func (e *DecodeError) Unwrap() []error {
	errs := []error{services.ErrDecode}
	if e.Kind == DecodeAPI {
		errs = append(errs, ErrAPIResponse)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func structuralError(data []byte, message string, err error) *DecodeError {
	return &DecodeError{
		Kind:    DecodeStructural,
		Message: message,
		Excerpt: textutil.Excerpt(string(data), excerptLimit),
		Err:     err,
	}
}

func apiError(data []byte, message string) *DecodeError {
	return &DecodeError{
		Kind:    DecodeAPI,
		Message: message,
		Excerpt: textutil.Excerpt(string(data), excerptLimit),
	}
}
