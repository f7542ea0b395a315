package kit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

const (
	RejectJSONSyntax       = "JsonSyntaxError"
	RejectJSONData         = "JsonDataError"
	RejectMissingJSONCType = "MissingJsonContentType"
	RejectBytes            = "BytesRejection"
	RejectQuery            = "FailedToDeserializeQueryString"
)

// RejectionError is a request refused at the parsing boundary, before any
// handler logic ran.
type RejectionError struct {
	Status  int
	Kind    string
	Message string
}

func (e *RejectionError) Error() string {
	return e.Kind + ": " + e.Message
}

func DataRejection(format string, args ...any) *RejectionError {
	return &RejectionError{
		Status:  http.StatusUnprocessableEntity,
		Kind:    RejectJSONData,
		Message: "Failed to deserialize the JSON body into the target type: " + fmt.Sprintf(format, args...),
	}
}

func QueryRejection(format string, args ...any) *RejectionError {
	return &RejectionError{
		Status:  http.StatusBadRequest,
		Kind:    RejectQuery,
		Message: "Failed to deserialize query string: " + fmt.Sprintf(format, args...),
	}
}

// DecodeJSON reads exactly one JSON value from the body into v. Unknown
// fields are ignored. A nil result means v was filled.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) *RejectionError {
	if !hasJSONContentType(r.Header.Get("Content-Type")) {
		return &RejectionError{
			Status:  http.StatusUnsupportedMediaType,
			Kind:    RejectMissingJSONCType,
			Message: "Expected request with `Content-Type: application/json`",
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return classifyDecodeErr(err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			err = errors.New("trailing characters after JSON value")
		}
		return classifyDecodeErr(err)
	}
	return nil
}

func WriteRejection(w http.ResponseWriter, r *http.Request, rej *RejectionError) {
	WriteError(w, r, rej.Status, rej.Kind, rej.Message)
}

func classifyDecodeErr(err error) *RejectionError {
	var (
		maxErr  *http.MaxBytesError
		typeErr *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &maxErr):
		return &RejectionError{
			Status:  http.StatusRequestEntityTooLarge,
			Kind:    RejectBytes,
			Message: fmt.Sprintf("Failed to buffer the request body: length limit of %d bytes exceeded", maxErr.Limit),
		}
	case errors.As(err, &typeErr):
		return DataRejection("%s", err.Error())
	case errors.Is(err, io.EOF):
		err = errors.New("unexpected end of input")
	}

	return &RejectionError{
		Status:  http.StatusBadRequest,
		Kind:    RejectJSONSyntax,
		Message: "Failed to parse the request body as JSON: " + err.Error(),
	}
}

func hasJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	if mt == "application/json" {
		return true
	}
	return strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json")
}
