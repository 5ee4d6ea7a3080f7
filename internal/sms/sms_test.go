package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid": "SM123"}`))
	}))
	defer server.Close()

	client := NewClient("AC123", "secret", "+15550001111", WithAPIBase(server.URL))

	err := client.Send(context.Background(), "+15552223333", "Stream starts in an hour")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/Accounts/AC123/Messages.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUser != "AC123" || gotPass != "secret" {
		t.Errorf("basic auth = %q:%q", gotUser, gotPass)
	}
	if gotTo != "+15552223333" {
		t.Errorf("To = %q", gotTo)
	}
	if gotFrom != "+15550001111" {
		t.Errorf("From = %q", gotFrom)
	}
	if gotBody != "Stream starts in an hour" {
		t.Errorf("Body = %q", gotBody)
	}
}

func TestSendNotConfigured(t *testing.T) {
	client := NewClient("", "", "")

	if err := client.Send(context.Background(), "+15552223333", "hi"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient("AC123", "secret", "+15550001111", WithAPIBase(server.URL))

	if err := client.Send(context.Background(), "bad-number", "hi"); err == nil {
		t.Fatal("expected error for API failure")
	}
}
