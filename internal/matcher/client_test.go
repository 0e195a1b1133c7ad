package matcher_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"entmatch/internal/matcher"
	"entmatch/internal/services"
)

func newClient(t *testing.T, url string, opts ...matcher.Option) *matcher.Client {
	t.Helper()
	client, err := matcher.New(url, 2*time.Second, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func requireTransportError(t *testing.T, err error) *matcher.TransportError {
	t.Helper()
	var terr *matcher.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected services.ErrTransport marker on %v", err)
	}
	return terr
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := matcher.New(" ", time.Second); err == nil {
		t.Fatal("expected error when base url missing")
	}
	if _, err := matcher.New("http://localhost:8000", 0); err == nil {
		t.Fatal("expected error when timeout missing")
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/health" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","message":"ready"}`))
	}))
	t.Cleanup(server.Close)

	health, err := newClient(t, server.URL+"/").Health(context.Background())
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if health.Status != "ok" || health.Message != "ready" {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestMatchSingleSendsTrimmedQueryAndCapsAlternatives(t *testing.T) {
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/match" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		gotRequestID = r.Header.Get(matcher.RequestIDHeader)
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["query"] != "acme" {
			t.Errorf("expected trimmed query, got %q", body["query"])
		}
		_, _ = w.Write([]byte(`{
			"query":"acme",
			"top_match":{"entity":"Acme Corp","confidence":0.92,"scores":{"tfidf":0.9,"levenshtein":0.8,"token_set":1}},
			"alternatives":[
				{"entity":"Acme Inc","confidence":0.7,"scores":{"tfidf":0.7,"levenshtein":0.6,"token_set":0.8}},
				{"entity":"Acme Ltd","confidence":0.6,"scores":{"tfidf":0.6,"levenshtein":0.5,"token_set":0.7}},
				{"entity":"Acme LLC","confidence":0.5,"scores":{"tfidf":0.5,"levenshtein":0.4,"token_set":0.6}}
			]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, matcher.WithMaxAlternatives(2))
	outcome, err := client.MatchSingle(context.Background(), "  acme ")
	if err != nil {
		t.Fatalf("MatchSingle returned error: %v", err)
	}
	if outcome.TopMatch == nil || outcome.TopMatch.Entity != "Acme Corp" {
		t.Fatalf("unexpected top match: %+v", outcome.TopMatch)
	}
	if outcome.TopMatch.Scores == nil || outcome.TopMatch.Scores.TokenSet != 1 {
		t.Fatalf("expected scores to decode: %+v", outcome.TopMatch.Scores)
	}
	if len(outcome.Alternatives) != 2 {
		t.Fatalf("expected alternatives capped at 2, got %d", len(outcome.Alternatives))
	}
	if got := outcome.Candidates(); len(got) != 3 || got[0].Entity != "Acme Corp" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if gotRequestID == "" {
		t.Fatal("expected request id header")
	}
}

func TestMatchSingleUsesContextRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(matcher.RequestIDHeader); got != "req-42" {
			t.Errorf("expected propagated request id, got %q", got)
		}
		_, _ = w.Write([]byte(`{"query":"x","top_match":null,"alternatives":[]}`))
	}))
	t.Cleanup(server.Close)

	ctx := services.WithRequestID(context.Background(), "req-42")
	outcome, err := newClient(t, server.URL).MatchSingle(ctx, "x")
	if err != nil {
		t.Fatalf("MatchSingle returned error: %v", err)
	}
	if outcome.TopMatch != nil {
		t.Fatalf("expected nil top match, got %+v", outcome.TopMatch)
	}
}

func TestMatchSingleEmptyQuerySkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	_, err := newClient(t, server.URL).MatchSingle(context.Background(), " \t ")
	if !errors.Is(err, matcher.ErrEmptyQuery) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no requests, got %d", calls.Load())
	}
}

func TestMatchBatchUploadsNamesAsCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/match/batch" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file field: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "names.csv" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		records, err := csv.NewReader(file).ReadAll()
		if err != nil {
			t.Errorf("read csv: %v", err)
		}
		want := [][]string{{"names"}, {"Acme"}, {"Globex, Inc"}, {`Say "hi"`}}
		if !reflect.DeepEqual(records, want) {
			t.Errorf("records = %q, want %q", records, want)
		}
		_, _ = w.Write([]byte(`[
			{"input":"Acme","match":"Acme Corp","confidence":0.9,"error":null},
			{"input":"Globex, Inc","match":null,"confidence":0,"error":"no candidates"},
			{"input":"Say \"hi\"","match":"Hi Co","confidence":0.41,"error":null,"scores":{"tfidf":0.4,"levenshtein":0.3,"token_set":0.5}}
		]`))
	}))
	t.Cleanup(server.Close)

	outcomes, err := newClient(t, server.URL).MatchBatch(context.Background(), []string{"Acme", "Globex, Inc", `Say "hi"`})
	if err != nil {
		t.Fatalf("MatchBatch returned error: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].Succeeded() || outcomes[0].MatchText() != "Acme Corp" {
		t.Fatalf("unexpected first outcome: %+v", outcomes[0])
	}
	if outcomes[1].Succeeded() || outcomes[1].ErrorText() != "no candidates" {
		t.Fatalf("unexpected second outcome: %+v", outcomes[1])
	}
	if outcomes[2].Scores == nil || outcomes[2].Scores.TFIDF != 0.4 {
		t.Fatalf("expected scores on third outcome: %+v", outcomes[2])
	}
}

func TestMatchBatchRejectsEmptyInput(t *testing.T) {
	client := newClient(t, "http://127.0.0.1:1")
	if _, err := client.MatchBatch(context.Background(), nil); !errors.Is(err, matcher.ErrNoNames) {
		t.Fatalf("expected ErrNoNames, got %v", err)
	}
}

func TestMatchBatchToleratesLengthMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(`[{"input":"Acme","match":"Acme","confidence":1,"error":null}]`))
	}))
	t.Cleanup(server.Close)

	outcomes, err := newClient(t, server.URL).MatchBatch(context.Background(), []string{"Acme", "Globex"})
	if err != nil {
		t.Fatalf("MatchBatch returned error: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected outcomes passed through unrepaired, got %d", len(outcomes))
	}
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"bad query"}`, "bad query"},
		{"detail field", http.StatusUnprocessableEntity, `{"detail":"query too long"}`, "query too long"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body"]}]}`, "Request failed with status code 422"},
		{"plain text", http.StatusInternalServerError, `oops`, "Request failed with status code 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			_, err := newClient(t, server.URL).MatchSingle(context.Background(), "acme")
			terr := requireTransportError(t, err)
			if terr.Status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, terr.Status)
			}
			if terr.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, terr.Message)
			}
		})
	}
}

func TestUndecodableBodyIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	t.Cleanup(server.Close)

	_, err := newClient(t, server.URL).Health(context.Background())
	terr := requireTransportError(t, err)
	if terr.Status != http.StatusOK || !strings.HasPrefix(terr.Message, "Invalid response from matcher") {
		t.Fatalf("unexpected error: %+v", terr)
	}
}

func TestNetworkFailureHasNoStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newClient(t, url).Health(context.Background())
	terr := requireTransportError(t, err)
	if terr.Status != 0 {
		t.Fatalf("expected no status for network failure, got %d", terr.Status)
	}
	if terr.Message == "" {
		t.Fatal("expected a message")
	}
}

func TestTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client, err := matcher.New(server.URL, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.MatchSingle(context.Background(), "slow")
	terr := requireTransportError(t, err)
	if terr.Message != "timeout of 50ms exceeded" {
		t.Fatalf("unexpected timeout message %q", terr.Message)
	}
}

func TestCancelledContextIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := newClient(t, server.URL).MatchSingle(ctx, "acme")
	terr := requireTransportError(t, err)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if terr.Message != "Request cancelled" {
		t.Fatalf("unexpected message %q", terr.Message)
	}
}

func TestRateLimitPacesRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, matcher.WithRateLimit(20))
	start := time.Now()
	for i := 0; i < 25; i++ {
		if _, err := client.Health(context.Background()); err != nil {
			t.Fatalf("Health returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("expected pacing to slow 25 requests at 20rps, took %s", elapsed)
	}
	if calls.Load() != 25 {
		t.Fatalf("expected 25 calls, got %d", calls.Load())
	}
}

func TestRateLimitWaitPastTimeoutIsTransportError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, matcher.WithRateLimit(0.01))
	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("first Health returned error: %v", err)
	}

	start := time.Now()
	_, err := client.Health(context.Background())
	terr := requireTransportError(t, err)
	if terr.Message != "timeout of 2000ms exceeded" {
		t.Fatalf("unexpected message %q", terr.Message)
	}
	if terr.Status != 0 {
		t.Fatalf("expected no status, got %d", terr.Status)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected the over-long wait to be rejected up front, took %s", elapsed)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call to reach the server, got %d", calls.Load())
	}
}

func TestRateLimitWaitCancelledIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, matcher.WithRateLimit(0.01))
	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("first Health returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Health(ctx)
	terr := requireTransportError(t, err)
	if terr.Message != "Request cancelled" {
		t.Fatalf("unexpected message %q", terr.Message)
	}
}
