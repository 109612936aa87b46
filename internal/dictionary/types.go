package dictionary

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Outcome classifies a single definition lookup.
type Outcome int

const (
	OutcomeUndefined Outcome = iota
	OutcomeDefined
	// OutcomeError marks a lookup that could not be answered: a non-404
	// failure status, a transport error or an undecodable body.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDefined:
		return "defined"
	case OutcomeUndefined:
		return "undefined"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the classification of one word. Status is zero when no HTTP
// response was received.
type Result struct {
	Word    string  `json:"word"`
	Outcome Outcome `json:"outcome"`
	Status  int     `json:"status,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Entries int     `json:"entries,omitempty"`
}

// Policy decides what happens to words whose lookup failed.
type Policy string

const (
	// PolicyDrop excludes failed lookups from the output, the same as words
	// the dictionary does not know.
	PolicyDrop Policy = "drop"
	// PolicyKeep retains failed lookups so a rate-limited word is not lost.
	PolicyKeep Policy = "keep"
	// PolicyAbort stops the run at the first failed lookup.
	PolicyAbort Policy = "abort"
)

// ParsePolicy maps a user supplied name onto a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(name))); p {
	case PolicyDrop, PolicyKeep, PolicyAbort:
		return p, nil
	case "":
		return PolicyDrop, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want drop, keep or abort)", name)
	}
}

// Keeps reports whether a word with result r belongs in the filtered list.
func (p Policy) Keeps(r Result) bool {
	switch r.Outcome {
	case OutcomeDefined:
		return true
	case OutcomeError:
		return p == PolicyKeep
	default:
		return false
	}
}

// Doer is the single HTTP capability the client needs. *http.Client
// satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WordChecker classifies words one at a time.
type WordChecker interface {
	CheckWord(ctx context.Context, word string) Result
}

// Entry is one element of a successful lookup response. The service returns
// one entry per etymology.
type Entry struct {
	Word      string     `json:"word"`
	Phonetics []Phonetic `json:"phonetics"`
	Meanings  []Meaning  `json:"meanings"`
}

type Phonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

// Meaning groups definitions sharing a part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}
