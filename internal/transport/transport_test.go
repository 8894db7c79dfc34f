package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hot-dao/hot-validation-oracle/internal/oraclerr"
)

type echoResponse struct {
	Value int `json:"value"`
}

func TestPostJSONReceiveJSONHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	c := New()
	got, err := PostJSONReceiveJSON[echoResponse](context.Background(), c, srv.URL, map[string]int{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != 42 {
		t.Fatalf("got %d, want 42", got.Value)
	}
}

func TestPostJSONReceiveJSONNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := New()
	_, err := PostJSONReceiveJSON[echoResponse](context.Background(), c, srv.URL, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var te *oraclerr.Transport
	if !errors.As(err, &te) {
		t.Fatalf("expected a Transport error, got %T: %v", err, err)
	}
	if te.Status != 500 {
		t.Fatalf("status = %d, want 500", te.Status)
	}
}

func TestPostJSONReceiveJSONDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New()
	_, err := PostJSONReceiveJSON[echoResponse](context.Background(), c, srv.URL, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var de *oraclerr.Decode
	if !errors.As(err, &de) {
		t.Fatalf("expected a Decode error, got %T: %v", err, err)
	}
}

func TestSnipTruncatesHeadAndTail(t *testing.T) {
	big := strings.Repeat("a", 1000) + "MIDDLE" + strings.Repeat("b", 1000)
	got := snip([]byte(big))
	if len(got) > logSnipMax+len("…") {
		t.Fatalf("snip result too long: %d bytes", len(got))
	}
	if !strings.HasPrefix(got, strings.Repeat("a", 10)) {
		t.Fatalf("expected head to be preserved")
	}
	if !strings.HasSuffix(got, strings.Repeat("b", 10)) {
		t.Fatalf("expected tail to be preserved")
	}
}

func TestPostJSONReceiveJSONTransportFailure(t *testing.T) {
	c := New()
	_, err := PostJSONReceiveJSON[echoResponse](context.Background(), c, "http://127.0.0.1:1", nil)
	if err == nil {
		t.Fatal("expected an error connecting to a closed port")
	}
	var te *oraclerr.Transport
	if !errors.As(err, &te) {
		t.Fatalf("expected a Transport error, got %T: %v", err, err)
	}
	if te.Status != 0 {
		t.Fatalf("status should be 0 for a transport-level failure, got %d", te.Status)
	}
}
