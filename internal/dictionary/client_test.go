package dictionary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amuletBody = `[{"word":"amulet","phonetics":[{"text":"/ˈæmjʊlɪt/"}],` +
	`"meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A charm worn for protection."}]}]}]`

type pathLog struct {
	mu    sync.Mutex
	paths []string
}

func (p *pathLog) add(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
}

func (p *pathLog) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *pathLog) {
	t.Helper()
	paths := &pathLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths.add(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, paths
}

func warnings(hook *test.Hook) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.WarnLevel {
			out = append(out, e)
		}
	}
	return out
}

func TestClient_CheckWord(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		outcome  Outcome
		entries  int
		warnings int
	}{
		{name: "definition found", status: http.StatusOK, body: amuletBody, outcome: OutcomeDefined, entries: 1},
		{name: "empty array", status: http.StatusOK, body: `[]`, outcome: OutcomeUndefined},
		{name: "not an array", status: http.StatusOK, body: `{"title":"No Definitions Found"}`, outcome: OutcomeUndefined},
		{name: "array of scalars", status: http.StatusOK, body: `["x"]`, outcome: OutcomeDefined, entries: 1},
		{name: "not found", status: http.StatusNotFound, body: `{"title":"No Definitions Found"}`, outcome: OutcomeUndefined},
		{name: "rate limited", status: http.StatusTooManyRequests, body: ``, outcome: OutcomeError, warnings: 1},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, outcome: OutcomeError, warnings: 1},
		{name: "malformed body", status: http.StatusOK, body: `[{"word":`, outcome: OutcomeError, warnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newTestServer(t, tt.status, tt.body)
			logger, hook := test.NewNullLogger()
			c := NewClientWithDoer(server.URL, server.Client(), logger)

			res := c.CheckWord(context.Background(), "amulet")

			assert.Equal(t, "amulet", res.Word)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.entries, res.Entries)
			assert.Len(t, warnings(hook), tt.warnings)
			if tt.outcome == OutcomeError {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestClient_CheckWord_DiagnosticNamesWordAndStatus(t *testing.T) {
	server, _ := newTestServer(t, http.StatusTooManyRequests, ``)
	logger, hook := test.NewNullLogger()
	c := NewClientWithDoer(server.URL, server.Client(), logger)

	c.CheckWord(context.Background(), "wombat")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "wombat", entry.Data["word"])
	assert.Equal(t, http.StatusTooManyRequests, entry.Data["status"])
	assert.Contains(t, entry.Data["reason"], "429 Too Many Requests")
}

func TestClient_CheckWord_WordIsLastPathSegment(t *testing.T) {
	server, paths := newTestServer(t, http.StatusOK, `[]`)
	c := NewClientWithDoer(server.URL+"/api/v2/entries/en/", server.Client(), nil)

	c.CheckWord(context.Background(), "amulet")

	assert.Equal(t, []string{"/api/v2/entries/en/amulet"}, paths.all())
}

type errDoer struct{ err error }

func (d errDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func TestClient_CheckWord_TransportError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	c := NewClientWithDoer("http://dictionary.invalid", errDoer{err: errors.New("connection refused")}, logger)

	res := c.CheckWord(context.Background(), "qzxjkx")

	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Zero(t, res.Status)
	assert.Contains(t, res.Reason, "connection refused")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "qzxjkx", entry.Data["word"])
	assert.NotContains(t, entry.Data, "status")
}

func TestClient_CheckWord_CancelledIsSilent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	c := NewClientWithDoer("http://dictionary.invalid", errDoer{err: context.Canceled}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := c.CheckWord(ctx, "amulet")

	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Contains(t, res.Reason, "cancelled")
	assert.Empty(t, warnings(hook))
}

func TestClient_CheckWord_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClientWithDoer(server.URL, &http.Client{Timeout: 50 * time.Millisecond}, nil)

	res := c.CheckWord(context.Background(), "amulet")

	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Contains(t, res.Reason, "request failed")
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0, nil)

	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	hc, ok := c.doer.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, DefaultTimeout, hc.Timeout)
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{
		"":       PolicyDrop,
		"drop":   PolicyDrop,
		"KEEP":   PolicyKeep,
		" abort": PolicyAbort,
	} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePolicy("retry")
	assert.Error(t, err)
}

func TestPolicy_Keeps(t *testing.T) {
	defined := Result{Outcome: OutcomeDefined}
	undefined := Result{Outcome: OutcomeUndefined}
	failed := Result{Outcome: OutcomeError}

	for _, p := range []Policy{PolicyDrop, PolicyKeep, PolicyAbort} {
		assert.True(t, p.Keeps(defined), p)
		assert.False(t, p.Keeps(undefined), p)
	}
	assert.False(t, PolicyDrop.Keeps(failed))
	assert.True(t, PolicyKeep.Keeps(failed))
	assert.False(t, PolicyAbort.Keeps(failed))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "defined", OutcomeDefined.String())
	assert.Equal(t, "undefined", OutcomeUndefined.String())
	assert.Equal(t, "error", OutcomeError.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}
