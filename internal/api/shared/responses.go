package shared

import (
	"log/slog"
	"net/http"
	"reflect"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the uniform success wrapper for API responses: a status
// label, the payload, and the payload's length when it is a sequence.
// Non-sequence payloads report length 0; clients must not read length as
// "1 for a single record".
type Envelope struct {
	Status string `json:"status"`
	Length int    `json:"length"`
	Data   any    `json:"data"`
}

// NewEnvelope wraps a result value with the given status label.
func NewEnvelope(status string, data any) Envelope {
	return Envelope{
		Status: status,
		Length: sequenceLen(data),
		Data:   data,
	}
}

// Success wraps a result value with the standard "success" label.
func Success(data any) Envelope {
	return NewEnvelope("success", data)
}

func sequenceLen(data any) int {
	if data == nil {
		return 0
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		return v.Len()
	}
	return 0
}

// RespondWithJSON writes a JSON response with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response",
			"error", err,
			"path", r.URL.Path)
	}
}
