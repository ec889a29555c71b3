package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_Length(t *testing.T) {
	tests := []struct {
		name       string
		data       any
		wantLength int
	}{
		{name: "slice of three", data: []int{1, 2, 3}, wantLength: 3},
		{name: "empty slice", data: []string{}, wantLength: 0},
		{name: "single object reports zero", data: map[string]any{"id": 1}, wantLength: 0},
		{name: "struct reports zero", data: struct{ Name string }{Name: "a"}, wantLength: 0},
		{name: "nil data", data: nil, wantLength: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewEnvelope("success", tt.data)
			assert.Equal(t, tt.wantLength, env.Length)
			assert.Equal(t, "success", env.Status)
		})
	}
}

func TestNewEnvelope_CustomStatusLabel(t *testing.T) {
	env := NewEnvelope("Listing Approved", nil)
	assert.Equal(t, "Listing Approved", env.Status)
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/aircrafts", nil)

	RespondWithJSON(w, r, 200, Success([]string{"a", "b"}))

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, 2, env.Length)
}
