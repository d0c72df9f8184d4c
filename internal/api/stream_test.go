// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sseBody(events ...string) string {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString("data: ")
		b.WriteString(ev)
		b.WriteString("\n\n")
	}
	return b.String()
}

func streamServer(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/stream") {
			t.Errorf("path = %q, want .../stream", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q, want text/event-stream", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, staticTokens("tok"))
}

func TestStreamAccumulatesFullText(t *testing.T) {
	client := streamServer(t, sseBody(
		`{"content":"Hello"}`,
		`{"content":" there"}`,
		`{"content":"!","done":true}`,
	))

	var states []string
	var doneText string
	err := client.StreamResponse(context.Background(), "c1", "m1", func(u StreamUpdate) {
		if u.Done {
			doneText = u.Text
			return
		}
		states = append(states, u.Text)
	})
	if err != nil {
		t.Fatalf("StreamResponse() error = %v", err)
	}

	want := []string{"Hello", "Hello there", "Hello there!"}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state[%d] = %q, want %q", i, states[i], want[i])
		}
	}
	if doneText != "Hello there!" {
		t.Errorf("final text = %q, want full accumulation", doneText)
	}
}

func TestStreamDoneSentinel(t *testing.T) {
	client := streamServer(t, sseBody(
		`{"content":"partial"}`,
		"[DONE]",
	))

	var gotDone bool
	var final string
	err := client.StreamResponse(context.Background(), "c1", "m1", func(u StreamUpdate) {
		if u.Done {
			gotDone = true
			final = u.Text
		}
	})
	if err != nil {
		t.Fatalf("StreamResponse() error = %v", err)
	}
	if !gotDone {
		t.Error("[DONE] sentinel should produce a Done update")
	}
	if final != "partial" {
		t.Errorf("final = %q, want partial", final)
	}
}

func TestStreamSkipsMalformedChunks(t *testing.T) {
	client := streamServer(t, sseBody(
		`{"content":"a"}`,
		`{not json`,
		`{"content":"b","done":true}`,
	))

	var final string
	err := client.StreamResponse(context.Background(), "c1", "m1", func(u StreamUpdate) {
		final = u.Text
	})
	if err != nil {
		t.Fatalf("StreamResponse() error = %v", err)
	}
	if final != "ab" {
		t.Errorf("final = %q, want ab (malformed chunk skipped)", final)
	}
}

func TestStreamErrorChunk(t *testing.T) {
	client := streamServer(t, sseBody(
		`{"content":"part"}`,
		`{"error":"model overloaded"}`,
	))

	var errUpdate *StreamUpdate
	err := client.StreamResponse(context.Background(), "c1", "m1", func(u StreamUpdate) {
		if u.Err != nil {
			cp := u
			errUpdate = &cp
		}
	})
	if err == nil {
		t.Fatal("expected stream error")
	}
	if KindOf(err) != KindTransient {
		t.Errorf("KindOf() = %v, want transient", KindOf(err))
	}
	if errUpdate == nil {
		t.Fatal("callback never saw the error update")
	}
	if errUpdate.Text != "part" {
		t.Errorf("error update text = %q, want accumulated prefix", errUpdate.Text)
	}
}

func TestStreamEOFWithoutDoneFinishes(t *testing.T) {
	client := streamServer(t, sseBody(`{"content":"truncated"}`))

	var gotDone bool
	err := client.StreamResponse(context.Background(), "c1", "m1", func(u StreamUpdate) {
		if u.Done {
			gotDone = true
		}
	})
	if err != nil {
		t.Fatalf("StreamResponse() error = %v", err)
	}
	if !gotDone {
		t.Error("EOF should close the stream as done")
	}
}

func TestStreamHTTPErrorClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticTokens("tok"))
	err := client.StreamResponse(context.Background(), "c1", "m1", func(StreamUpdate) {})
	if KindOf(err) != KindAuthenticationRequired {
		t.Errorf("KindOf() = %v, want authentication required", KindOf(err))
	}
}

func TestSSEReaderMultiLineData(t *testing.T) {
	r := newSSEReader(strings.NewReader("data: line one\ndata: line two\n\n"))
	data, err := r.readEvent()
	if err != nil {
		t.Fatalf("readEvent() error = %v", err)
	}
	if got := string(data); got != "line one\nline two" {
		t.Errorf("data = %q, want joined lines", got)
	}
}
