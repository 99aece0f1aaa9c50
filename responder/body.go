package responder

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/drblury/todoweaver/jsonutil"
)

var (
	// ErrEmptyBody is reported when a request carries no payload.
	ErrEmptyBody = errors.New("request body is required")
	// ErrMalformedBody is reported when the payload is not a single JSON value.
	ErrMalformedBody = errors.New("request body is not a single JSON value")
)

// DecodeRequestBody decodes the JSON body of req into v. An absent or empty
// body yields ErrEmptyBody; anything other than exactly one JSON value,
// trailing content included, yields ErrMalformedBody.
func DecodeRequestBody(req *http.Request, v any) error {
	if req == nil || req.Body == nil || req.Body == http.NoBody {
		return ErrEmptyBody
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyBody
	}
	if !jsonutil.Valid(data) {
		return ErrMalformedBody
	}
	return jsonutil.Unmarshal(data, v)
}
