/*
Package req binds JSON request bodies for the widget API.

Bodies are size-capped, must be application/json, must not carry unknown fields,
and must hold exactly one JSON document.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"anonchat/internal/pkg/errs"
)

// MaxBodyBytes caps every JSON request body (64 KB).
const MaxBodyBytes int64 = 64 << 10

// BindJSON decodes the body of r into dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
