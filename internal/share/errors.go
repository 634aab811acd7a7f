package share

import "errors"

// Decode failures. Decode wraps them with detail; match with errors.Is.
var (
	ErrFormat  = errors.New("not a fact-share token")
	ErrDecode  = errors.New("malformed fact-share token")
	ErrVersion = errors.New("unsupported fact-share token version")
)

// UserMessage turns a decode error into a hint for the person scanning.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return "This code does not contain shared facts. Try a different code."
	case errors.Is(err, ErrDecode):
		return "The code could not be read completely. Please scan it again."
	case errors.Is(err, ErrVersion):
		return "This code was made by a newer or older app version. Ask the owner to share again."
	default:
		return "Something went wrong while reading the code."
	}
}
