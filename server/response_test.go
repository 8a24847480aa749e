package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRespSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	respSuccess(w, map[string]interface{}{})

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	env := decodeEnvelope(t, w)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "Success", env.Message)
	assert.Equal(t, map[string]interface{}{}, env.Data)
}

// 业务码与传输状态码是两根独立的轴
func TestBusinessCodeVersusTransportStatus(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w *httptest.ResponseRecorder)
		wantStatus int
		wantCode   int
	}{
		{"bad request", func(w *httptest.ResponseRecorder) { respBadRequest(w, "", nil) }, 400, 400},
		{"unprocessable", func(w *httptest.ResponseRecorder) { respUnprocessable(w, "detail", nil) }, 422, 422},
		{"mismatch", func(w *httptest.ResponseRecorder) { respMismatch(w) }, 400, 4000},
		{"token error", func(w *httptest.ResponseRecorder) { respTokenError(w, "bad token") }, 500, 5000},
		{"user not found", func(w *httptest.ResponseRecorder) { respUserNotFound(w, "no user") }, 500, 5001},
		{"server error", func(w *httptest.ResponseRecorder) { respServerError(w, "") }, 500, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeEnvelope(t, w).Code)
		})
	}
}

func TestRespMismatch_Body(t *testing.T) {
	w := httptest.NewRecorder()
	respMismatch(w)

	env := decodeEnvelope(t, w)
	assert.Equal(t, "Account and password do not match", env.Message)
	assert.Equal(t, "Account and password do not match", env.Data)
}

func TestRespServerError_DefaultMessage(t *testing.T) {
	w := httptest.NewRecorder()
	respServerError(w, "")
	assert.Equal(t, "Server Error", decodeEnvelope(t, w).Message)
}
