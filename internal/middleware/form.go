package middleware

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// maxMultipartMemory bounds in-memory multipart parsing.
const maxMultipartMemory = 1 << 20

// ErrMalformedForm is returned when the request body cannot be parsed.
var ErrMalformedForm = errors.New("malformed form body")

// ParseRequestForm fills r.Form from the query string and the body.
// POST bodies may be url-encoded or multipart. GET requests also accept a
// url-encoded body, which net/http ignores for GET, so it is merged here.
// Calling it again is a no-op.
func ParseRequestForm(r *http.Request) error {
	if r.Form != nil {
		return nil
	}

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if r.Method == http.MethodGet && contentType == "application/x-www-form-urlencoded" && r.Body != nil {
		query := r.URL.Query()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedForm, err)
		}
		bodyValues, err := url.ParseQuery(string(body))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedForm, err)
		}
		// Body values take precedence, like net/http does for POST.
		merged := url.Values{}
		for k, v := range bodyValues {
			merged[k] = append(merged[k], v...)
		}
		for k, v := range query {
			merged[k] = append(merged[k], v...)
		}
		r.Form = merged
		r.PostForm = bodyValues
		return nil
	}

	if contentType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedForm, err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedForm, err)
	}
	return nil
}

// WriteFormError writes the response for a ParseRequestForm failure.
func WriteFormError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_FORM", "Request body is not a valid form")
}
