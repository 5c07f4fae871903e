package apperror

import (
	"context"
	"errors"
	"net/http"

	"github.com/Ashivkar123/Image-Resizer/internal/catalog"
	"github.com/Ashivkar123/Image-Resizer/internal/processor"
	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
	"github.com/Ashivkar123/Image-Resizer/internal/storage"
)

type Error struct {
	Code       string
	Message    string
	StatusCode int
	Internal   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Internal
}

var (
	ErrNotFound = &Error{
		Code:       "not_found",
		Message:    "The requested image was not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &Error{
		Code:       "bad_request",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrNoFiles = &Error{
		Code:       "no_files",
		Message:    "No images were uploaded",
		StatusCode: http.StatusBadRequest,
	}

	ErrTooManyFiles = &Error{
		Code:       "too_many_files",
		Message:    "Too many files in one upload",
		StatusCode: http.StatusBadRequest,
	}

	ErrFileTooLarge = &Error{
		Code:       "file_too_large",
		Message:    "The uploaded file exceeds the maximum allowed size",
		StatusCode: http.StatusRequestEntityTooLarge,
	}

	ErrInvalidFileType = &Error{
		Code:       "invalid_file_type",
		Message:    "This file type is not supported",
		StatusCode: http.StatusBadRequest,
	}

	ErrDecode = &Error{
		Code:       "decode_error",
		Message:    "The image could not be decoded",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrInvalidCrop = &Error{
		Code:       "invalid_crop",
		Message:    "The crop rectangle lies outside the image",
		StatusCode: http.StatusBadRequest,
	}

	ErrUnsupportedFormat = &Error{
		Code:       "unsupported_format",
		Message:    "The requested output format is not supported",
		StatusCode: http.StatusBadRequest,
	}

	ErrEncode = &Error{
		Code:       "encode_error",
		Message:    "The image could not be encoded",
		StatusCode: http.StatusInternalServerError,
	}

	ErrCancelled = &Error{
		Code:       "cancelled",
		Message:    "The request was cancelled",
		StatusCode: 499,
	}

	ErrRateLimited = &Error{
		Code:       "rate_limited",
		Message:    "Too many requests. Please try again later",
		StatusCode: http.StatusTooManyRequests,
	}

	ErrInternal = &Error{
		Code:       "internal_error",
		Message:    "An unexpected error occurred. Please try again later",
		StatusCode: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &Error{
		Code:       "service_unavailable",
		Message:    "Service temporarily unavailable. Please try again later",
		StatusCode: http.StatusServiceUnavailable,
	}
)

func New(code, message string, statusCode int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Wrap(err error, appErr *Error) *Error {
	return &Error{
		Code:       appErr.Code,
		Message:    appErr.Message,
		StatusCode: appErr.StatusCode,
		Internal:   err,
	}
}

func WrapWithMessage(err error, code, message string, statusCode int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// FromDomain maps pipeline, catalog and storage errors onto their HTTP
// shape. Errors that already are *Error pass through.
func FromDomain(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, processor.ErrDecode):
		return Wrap(err, ErrDecode)
	case errors.Is(err, processor.ErrInvalidCrop):
		return Wrap(err, ErrInvalidCrop)
	case errors.Is(err, processor.ErrUnsupportedFormat):
		return Wrap(err, ErrUnsupportedFormat)
	case errors.Is(err, processor.ErrEncode):
		return Wrap(err, ErrEncode)
	case errors.Is(err, processor.ErrInvalidConfig):
		return Wrap(err, ErrBadRequest)
	case errors.Is(err, resizer.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		return Wrap(err, ErrNotFound)
	case errors.Is(err, resizer.ErrNoImages):
		return Wrap(err, ErrNoFiles)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCancelled)
	default:
		return Wrap(err, ErrInternal)
	}
}

func Is(err error, target *Error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func SafeMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}

func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}
