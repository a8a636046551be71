package mailrelay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubmitSuccess(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"mailtoLink":"mailto:atelier@example.com?subject=Devis"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	res := c.Submit(context.Background(), Request{
		Nom:     "Durand",
		Objet:   "Demande de devis",
		Message: "Bonjour",
		Type:    TypeQuote,
		Panier:  "Panier vide",
	})

	assert.True(t, res.Success)
	assert.Equal(t, "mailto:atelier@example.com?subject=Devis", res.MailtoLink)
	assert.Equal(t, "devis", got["type"])
	assert.Equal(t, "Panier vide", got["panier"])
	assert.NotContains(t, got, "telephone")
}

func TestSubmitRelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Adresse email invalide"}`))
	}))
	defer srv.Close()

	res := NewClient(srv.URL, time.Second, zap.NewNop()).Submit(context.Background(), Request{Type: TypeContact})
	assert.False(t, res.Success)
	assert.Equal(t, "Adresse email invalide", res.Error)
}

func TestSubmitFoldsFailures(t *testing.T) {
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer garbage.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()

	silent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer silent.Close()

	for _, url := range []string{garbage.URL, down.URL, silent.URL} {
		res := NewClient(url, time.Second, zap.NewNop()).Submit(context.Background(), Request{Type: TypeContact})
		assert.False(t, res.Success, url)
		assert.NotEmpty(t, res.Error, url)
	}
}
