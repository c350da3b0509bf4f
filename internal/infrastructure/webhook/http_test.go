package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
)

func TestHTTPEmitter_PostsSignedJSON(t *testing.T) {
	var (
		gotBody []byte
		gotSig  string
		gotAuth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	e := NewHTTPEmitter(srv.URL, WithSecret("k"), WithHeader("Authorization", "Bearer t"))
	err := e.Emit(context.Background(), ports.WebhookEvent{ID: "e1", Event: "task.assigned", Payload: map[string]int{"task_id": 7}})
	if err != nil {
		t.Fatal(err)
	}
	var ev struct {
		ID      string         `json:"id"`
		Event   string         `json:"event"`
		Payload map[string]int `json:"payload"`
	}
	if err := json.Unmarshal(gotBody, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.ID != "e1" || ev.Event != "task.assigned" || ev.Payload["task_id"] != 7 {
		t.Errorf("unexpected event %+v", ev)
	}
	if gotSig != Sign([]byte("k"), gotBody) {
		t.Errorf("signature mismatch")
	}
	if gotAuth != "Bearer t" {
		t.Errorf("header not forwarded")
	}
}

func TestHTTPEmitter_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SignatureHeader) != "" {
			t.Error("unsigned emitter sent a signature")
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPEmitter(srv.URL).Emit(context.Background(), ports.WebhookEvent{Event: "task.assigned"})
	if err == nil || err.Error() != "webhook endpoint returned status 502" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNoopEmitter_DropsTaskAssigned(t *testing.T) {
	var logs bytes.Buffer
	e := NewNoopEmitter(zerolog.New(&logs).Level(zerolog.DebugLevel))
	if err := e.Emit(context.Background(), ports.WebhookEvent{ID: "e9", Event: "task.assigned"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), `"event_id":"e9"`) || !strings.Contains(logs.String(), "event dropped") {
		t.Errorf("drop not logged: %s", logs.String())
	}
}
