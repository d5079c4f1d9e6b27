/*
Package req provides helpers for HTTP request parsing and data binding.

It encapsulates JSON and multipart form parsing with size constraints and
maps parse failures onto the application's error codes.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"boltchat/internal/pkg/errs"
)

const (
	// MaxFormMemory is the maximum memory (8 MB) ParseMultipartForm uses for
	// non-file fields before spilling to temporary files.
	MaxFormMemory int64 = 8 << 20

	// MaxRequestFileSize caps the entire multipart request body (5 MB),
	// enforced via http.MaxBytesReader. Avatars are the only uploads.
	MaxRequestFileSize int64 = 5 << 20
)

// BindJSON binds the JSON request body to dst. Unknown fields and trailing
// content are rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// SetupMultipart parses multipart form data from the request, enforcing the
// request size cap.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestFileSize)

	if err := r.ParseMultipartForm(MaxFormMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
