package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-notify/internal/models"
	"github.com/noah-isme/lms-notify/pkg/config"
)

func TestHTTPPushGatewaySendPush(t *testing.T) {
	var got pushRequest
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	g := NewHTTPPushGateway(config.PushConfig{BaseURL: srv.URL, APIKey: "secret"})
	msg := models.PushMessage{
		Title: "Deadline approaching",
		Body:  "Weekly Quiz is due soon.",
		Data:  map[string]string{"run_id": "run-1"},
	}

	// Send twice so the drained keep-alive connection gets reused.
	require.NoError(t, g.SendPush(context.Background(), "user-1", msg))
	require.NoError(t, g.SendPush(context.Background(), "user-1", msg))

	assert.Equal(t, "/v1/push", path)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "Deadline approaching", got.Title)
	assert.Equal(t, "run-1", got.Data["run_id"])
}

func TestHTTPPushGatewayNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "subscription gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewHTTPPushGateway(config.PushConfig{BaseURL: srv.URL})
	err := g.SendPush(context.Background(), "user-1", models.PushMessage{Title: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
