package jupiter

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"sol-volume-bot/internal/types"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("inputMint") == "" {
			http.Error(w, `{"error":"missing inputMint"}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{
			"inputMint": "` + r.URL.Query().Get("inputMint") + `",
			"outputMint": "` + r.URL.Query().Get("outputMint") + `",
			"inAmount": "` + r.URL.Query().Get("amount") + `",
			"outAmount": "123456"
		}`))
	})
	mux.HandleFunc("/swap", func(w http.ResponseWriter, r *http.Request) {
		payload := base64.StdEncoding.EncodeToString([]byte("raw-tx-bytes"))
		w.Write([]byte(`{"swapTransaction": "` + payload + `"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestQuote(t *testing.T) {
	v := NewWithBaseURL(testServer(t).URL)

	q, err := v.Quote(context.Background(), types.NativeMint, "MINT", 6_000_000, 50)
	if err != nil {
		t.Fatal(err)
	}
	if q.InAmount != 6_000_000 {
		t.Errorf("inAmount = %d, want 6000000", q.InAmount)
	}
	if q.OutAmount != 123456 {
		t.Errorf("outAmount = %d, want 123456", q.OutAmount)
	}
	if q.SlippageBps != 50 {
		t.Errorf("slippage = %d, want 50", q.SlippageBps)
	}
	if len(q.Raw) == 0 {
		t.Error("expected the raw quote envelope to be retained")
	}
}

func TestBuildSwapTransaction(t *testing.T) {
	v := NewWithBaseURL(testServer(t).URL)

	q, err := v.Quote(context.Background(), types.NativeMint, "MINT", 1_000, 50)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := v.BuildSwapTransaction(context.Background(), q, "signer-address")
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "raw-tx-bytes" {
		t.Errorf("decoded transaction = %q", raw)
	}
}

func TestQuoteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "no route found"}`))
	}))
	defer srv.Close()

	v := NewWithBaseURL(srv.URL)
	if _, err := v.Quote(context.Background(), types.NativeMint, "MINT", 1_000, 50); err == nil {
		t.Error("expected error from upstream error body")
	}
}
