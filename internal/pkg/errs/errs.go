package errs

import "errors"

var (
	ErrInvalid      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrTooMany      = errors.New("too many requests")
	ErrFetchFailed  = errors.New("image download failed")
	ErrUnavailable  = errors.New("encoder not configured")
)

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
