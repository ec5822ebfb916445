package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "bookingdesk/pkg/errors"
)

// DecodeBody decodes an optional JSON body. An empty body leaves target untouched.
func DecodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
