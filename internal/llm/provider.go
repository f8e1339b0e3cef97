package llm

import "context"

// Completer maps one user query to one assistant reply. Implementations are
// stateless: no prior turns are sent and nothing is cached between calls.
type Completer interface {
	Complete(ctx context.Context, userText string) Result
}

// Outcome discriminates how a completion call ended.
type Outcome int

const (
	// OutcomeOK means the reply carried text at the expected path.
	OutcomeOK Outcome = iota
	// OutcomeDefaulted means the call succeeded but the payload had no text at
	// the expected path, so the default reply text was substituted.
	OutcomeDefaulted
	// OutcomeFailed means a non-success status, a network error, or a body
	// that is not JSON at all.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDefaulted:
		return "defaulted"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of a completion call. Text is set for
// OutcomeOK and OutcomeDefaulted; Err is set for OutcomeFailed.
type Result struct {
	Text       string
	Outcome    Outcome
	StatusCode int
	Err        error
}

// Succeeded reports whether Text should be classified and shown as a reply.
func (r Result) Succeeded() bool {
	return r.Outcome != OutcomeFailed
}

// Wire format of the generateContent endpoint.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// firstText walks candidates[0].content.parts[0].text over a generic decode.
// A level that is missing or has the wrong type counts as absent.
func firstText(payload any) (string, bool) {
	node := payload
	for _, step := range []any{"candidates", 0, "content", "parts", 0, "text"} {
		switch key := step.(type) {
		case string:
			obj, ok := node.(map[string]any)
			if !ok {
				return "", false
			}
			node = obj[key]
		case int:
			arr, ok := node.([]any)
			if !ok || len(arr) <= key {
				return "", false
			}
			node = arr[key]
		}
	}
	text, ok := node.(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}
