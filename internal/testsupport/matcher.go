package testsupport

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"entmatch/internal/matcher"
)

// FakeMatcher is an httptest server speaking the matcher wire protocol. It
// scores queries against a fixed entity list by shared lower-case tokens.
type FakeMatcher struct {
	Server *httptest.Server

	mu       sync.Mutex
	entities []string
	failure  *fakeFailure
	requests map[string]int
}

type fakeFailure struct {
	status  int
	message string
}

// NewFakeMatcher starts a server that knows the given entities. It is closed
// when the test ends.
func NewFakeMatcher(t testing.TB, entities ...string) *FakeMatcher {
	t.Helper()
	fake := &FakeMatcher{entities: entities, requests: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", fake.handleHealth)
	mux.HandleFunc("POST /match", fake.handleMatch)
	mux.HandleFunc("POST /match/batch", fake.handleBatch)
	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Server.Close)
	return fake
}

// URL returns the server base URL.
func (f *FakeMatcher) URL() string {
	return f.Server.URL
}

// Fail makes every subsequent request return status with a message body.
// A zero status clears the failure.
func (f *FakeMatcher) Fail(status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		f.failure = nil
		return
	}
	f.failure = &fakeFailure{status: status, message: message}
}

// Requests returns how many requests hit path.
func (f *FakeMatcher) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *FakeMatcher) begin(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	f.requests[r.URL.Path]++
	failure := f.failure
	f.mu.Unlock()
	if failure != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failure.status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": failure.message})
		return false
	}
	return true
}

func (f *FakeMatcher) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !f.begin(w, r) {
		return
	}
	writeJSON(w, matcher.Health{Status: "ok"})
}

func (f *FakeMatcher) handleMatch(w http.ResponseWriter, r *http.Request) {
	if !f.begin(w, r) {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"detail":"invalid body"}`, http.StatusUnprocessableEntity)
		return
	}
	ranked := f.rank(req.Query)
	outcome := matcher.SingleOutcome{Query: req.Query, Alternatives: []matcher.Candidate{}}
	if len(ranked) > 0 {
		outcome.TopMatch = &ranked[0]
		outcome.Alternatives = append(outcome.Alternatives, ranked[1:]...)
	}
	writeJSON(w, outcome)
}

func (f *FakeMatcher) handleBatch(w http.ResponseWriter, r *http.Request) {
	if !f.begin(w, r) {
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"detail":"file field required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()
	names, err := readNames(file)
	if err != nil {
		http.Error(w, `{"detail":"unreadable csv"}`, http.StatusBadRequest)
		return
	}

	outcomes := make([]matcher.BatchOutcome, 0, len(names))
	for _, name := range names {
		outcome := matcher.BatchOutcome{Input: name}
		if ranked := f.rank(name); len(ranked) > 0 {
			entity := ranked[0].Entity
			outcome.Match = &entity
			outcome.Confidence = ranked[0].Confidence
			outcome.Scores = ranked[0].Scores
		}
		outcomes = append(outcomes, outcome)
	}
	writeJSON(w, outcomes)
}

func readNames(r io.Reader) ([]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != "names" {
		return nil, errors.New("missing names header")
	}
	names := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		names = append(names, record[0])
	}
	return names, nil
}

// rank scores entities by the share of query tokens they contain.
func (f *FakeMatcher) rank(query string) []matcher.Candidate {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil
	}
	f.mu.Lock()
	entities := append([]string(nil), f.entities...)
	f.mu.Unlock()

	var ranked []matcher.Candidate
	for _, entity := range entities {
		lower := strings.ToLower(entity)
		hits := 0
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) / float64(len(tokens))
		ranked = append(ranked, matcher.Candidate{
			Entity:     entity,
			Confidence: score,
			Scores:     &matcher.ScoreVector{TFIDF: score, Levenshtein: score, TokenSet: score},
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Confidence > ranked[j].Confidence })
	return ranked
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
