package matcher

// ScoreVector holds the per-signal similarity scores reported by the service.
type ScoreVector struct {
	TFIDF       float64 `json:"tfidf"`
	Levenshtein float64 `json:"levenshtein"`
	TokenSet    float64 `json:"token_set"`
}

// Candidate is one ranked entity for a query.
type Candidate struct {
	Entity     string       `json:"entity"`
	Confidence float64      `json:"confidence"`
	Scores     *ScoreVector `json:"scores,omitempty"`
}

// SingleOutcome is the response to one free-text query. TopMatch is nil when
// the service found nothing.
type SingleOutcome struct {
	Query        string      `json:"query"`
	TopMatch     *Candidate  `json:"top_match"`
	Alternatives []Candidate `json:"alternatives"`
}

// Candidates returns the top match followed by the alternatives.
func (o SingleOutcome) Candidates() []Candidate {
	out := make([]Candidate, 0, len(o.Alternatives)+1)
	if o.TopMatch != nil {
		out = append(out, *o.TopMatch)
	}
	return append(out, o.Alternatives...)
}

// BatchOutcome is the result for one submitted name, positionally aligned
// with the request.
type BatchOutcome struct {
	Input      string       `json:"input"`
	Match      *string      `json:"match"`
	Confidence float64      `json:"confidence"`
	Error      *string      `json:"error"`
	Scores     *ScoreVector `json:"scores,omitempty"`
}

// Succeeded reports a present match with no per-item error.
func (o BatchOutcome) Succeeded() bool {
	return o.Match != nil && *o.Match != "" && (o.Error == nil || *o.Error == "")
}

// MatchText returns the matched entity or "" when absent.
func (o BatchOutcome) MatchText() string {
	if o.Match == nil {
		return ""
	}
	return *o.Match
}

// ErrorText returns the per-item error or "" when absent.
func (o BatchOutcome) ErrorText() string {
	if o.Error == nil {
		return ""
	}
	return *o.Error
}

// Health is the service liveness report.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
