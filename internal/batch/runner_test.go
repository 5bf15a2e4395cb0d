package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"bulk-doi/internal/common/config"
	"bulk-doi/internal/common/datacite"
	"bulk-doi/internal/common/errors"
	"bulk-doi/internal/common/logger"
	allocateidentifier "bulk-doi/internal/workers/doi/allocate-identifier"
	createdoi "bulk-doi/internal/workers/doi/create-doi"
	validaterecord "bulk-doi/internal/workers/doi/validate-record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const header = "URL,Creators,Title,Publisher,Publication Year,Resource Type,Description\n"

// ==========================
// Test Helpers
// ==========================

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, rec validaterecord.Record, opts createdoi.SubmitOptions) *createdoi.Outcome {
	args := m.Called(ctx, rec, opts)
	return args.Get(0).(*createdoi.Outcome)
}

// fakeDatacite is an in-memory DataCite API.
type fakeDatacite struct {
	mu         sync.Mutex
	registered map[string]string // doi -> state
	failCreate bool
	lookups    int
}

func (f *fakeDatacite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/dois/"):
		f.lookups++
		if _, ok := f.registered[strings.TrimPrefix(r.URL.Path, "/dois/")]; ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPost && r.URL.Path == "/dois":
		if f.failCreate {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var payload datacite.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.registered[payload.Data.Attributes.DOI] = "draft"
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/dois/"):
		f.registered[strings.TrimPrefix(r.URL.Path, "/dois/")] = "findable"
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeDatacite) states() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.registered))
	for k, v := range f.registered {
		out[k] = v
	}
	return out
}

func (f *fakeDatacite) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

func newIntegrationRunner(t *testing.T, fake *fakeDatacite, opts createdoi.SubmitOptions) *Runner {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	log := logger.NewTestLogger(t)
	client := datacite.NewClient(config.DataciteConfig{
		URL:      srv.URL,
		Username: "ORG.REPO",
		Password: "secret",
		Prefix:   "10.5072",
		Timeout:  2000,
	})
	allocator := allocateidentifier.NewAllocator(allocateidentifier.AllocatorOptions{
		Prefix:   "10.5072",
		Registry: client,
		Logger:   log,
	})
	svc := createdoi.NewService(createdoi.ServiceDependencies{
		Logger:    log,
		Allocator: allocator,
		Registrar: client,
	}, createdoi.DefaultConfig())

	return NewRunner(RunnerDependencies{Logger: log, Submitter: svc}, opts)
}

func outputLines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

// ==========================
// Runner Tests
// ==========================

func TestRun_MixedBatchDryRun(t *testing.T) {
	fake := &fakeDatacite{registered: map[string]string{}}
	runner := newIntegrationRunner(t, fake, createdoi.SubmitOptions{})

	input := header +
		"not a url,\"Smith, Joe\",T1,P,2019,Dataset,\n" +
		"https://example.org/2,\"Smith, Joe, Jr\",T2,P,2019,Dataset,\n" +
		"https://example.org/3,\"[ACME];Doe, Jane\",T3,P,2019.0,Text,About it\n"

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	lines := outputLines(&out)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], `row=1 status=REJECTED doi="" error="URL: `), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `row=2 status=REJECTED doi="" error="Creators: `), lines[1])
	assert.Regexp(t, `^row=3 status=DRY_RUN doi=10\.5072/[0-9bcdfghjkmnpqrstvwxyz]{8} payload=\{`, lines[2])

	assert.Equal(t, &Summary{Total: 3, Rejected: 2, DryRun: 1}, summary)
	assert.Empty(t, fake.states(), "dry run must not register anything")
	// rejected rows never reach allocation; the valid row checks one identifier
	assert.Equal(t, 1, fake.lookupCount())

	_, payloadJSON, found := strings.Cut(lines[2], "payload=")
	require.True(t, found)
	var payload datacite.Payload
	require.NoError(t, json.Unmarshal([]byte(payloadJSON), &payload))
	require.Len(t, payload.Data.Attributes.Creators, 2)
	assert.Equal(t, datacite.NameTypeOrganizational, payload.Data.Attributes.Creators[0].NameType)
	assert.Equal(t, datacite.NameTypePersonal, payload.Data.Attributes.Creators[1].NameType)
	assert.Equal(t, 2019, payload.Data.Attributes.PublicationYear)
}

func TestRun_SubmitAndPublish(t *testing.T) {
	fake := &fakeDatacite{registered: map[string]string{}}
	runner := newIntegrationRunner(t, fake, createdoi.SubmitOptions{Submit: true, Publish: true})

	input := header +
		"https://example.org/1,[ACME],T1,P,2019,Dataset,\n" +
		"https://example.org/2,\"Doe, Jane\",T2,P,2020,Software,Code\n"

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	lines := outputLines(&out)
	require.Len(t, lines, 2)
	for i, line := range lines {
		assert.Contains(t, line, "status=PUBLISHED", "line %d", i)
		assert.Contains(t, line, "created=true published=true")
		assert.NotContains(t, line, "payload=")
	}

	states := fake.states()
	assert.Len(t, states, 2)
	for doi, state := range states {
		assert.Equal(t, "findable", state, doi)
	}
	assert.Equal(t, &Summary{Total: 2, Created: 2, Published: 2, Submitted: true}, summary)
}

func TestRun_CreateFailureContinues(t *testing.T) {
	fake := &fakeDatacite{registered: map[string]string{}, failCreate: true}
	runner := newIntegrationRunner(t, fake, createdoi.SubmitOptions{Submit: true})

	input := header +
		"https://example.org/1,[ACME],T1,P,2019,Dataset,\n" +
		"https://example.org/2,[ACME],T2,P,2019,Dataset,\n"

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	lines := outputLines(&out)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, "status=CREATE_FAILED")
		assert.Contains(t, line, "created=false published=false")
		assert.Contains(t, line, `error="DOI_CREATE_FAILED: `)
	}
	assert.Equal(t, 2, summary.Failed)
}

func TestRun_InvalidHeaderIsFatal(t *testing.T) {
	submitter := new(MockSubmitter)
	runner := NewRunner(RunnerDependencies{Logger: logger.NewTestLogger(t), Submitter: submitter}, createdoi.SubmitOptions{})

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "missing column", input: "URL,Creators,Title,Publisher,Publication Year,Resource Type\nhttps://example.org,[A],T,P,2019,Dataset\n"},
		{name: "unknown column", input: strings.TrimSuffix(header, "\n") + ",Notes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			summary, err := runner.Run(context.Background(), strings.NewReader(tt.input), &out)

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeCSVHeaderInvalid))
			assert.Zero(t, summary.Total)
			assert.Empty(t, out.String())
		})
	}
	submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_HeaderWithBOMAndAnyOrder(t *testing.T) {
	submitter := new(MockSubmitter)
	submitter.On("Submit", mock.Anything, mock.MatchedBy(func(rec validaterecord.Record) bool {
		return rec.URL == "https://example.org/1" && rec.Title == "T1" && rec.Row == 1
	}), createdoi.SubmitOptions{}).Return(&createdoi.Outcome{Row: 1, DOI: "10.5072/bbbbbbbb", DryRun: true}).Once()

	runner := NewRunner(RunnerDependencies{Logger: logger.NewTestLogger(t), Submitter: submitter}, createdoi.SubmitOptions{})

	input := "\xEF\xBB\xBFtitle, url ,CREATORS,Publisher,Publication Year,Resource Type,Description\n" +
		"T1,https://example.org/1,[ACME],P,2019,Dataset,\n"

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)
	assert.Equal(t, "row=1 status=DRY_RUN doi=10.5072/bbbbbbbb\n", out.String())
	assert.Equal(t, 1, summary.DryRun)
	submitter.AssertExpectations(t)
}

func TestRun_CancelledStopsBeforeNextRecord(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	submitter := new(MockSubmitter)
	submitter.On("Submit", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&createdoi.Outcome{Row: 1, DOI: "10.5072/bbbbbbbb", DryRun: true}).Once()

	runner := NewRunner(RunnerDependencies{Logger: logger.NewTestLogger(t), Submitter: submitter}, createdoi.SubmitOptions{})

	input := header +
		"https://example.org/1,[ACME],T1,P,2019,Dataset,\n" +
		"https://example.org/2,[ACME],T2,P,2019,Dataset,\n"

	var out bytes.Buffer
	summary, err := runner.Run(ctx, strings.NewReader(input), &out)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Total)
	assert.Len(t, outputLines(&out), 1)
	submitter.AssertExpectations(t)
}

func TestRun_ShortRowsReadAsEmpty(t *testing.T) {
	submitter := new(MockSubmitter)
	runner := NewRunner(RunnerDependencies{Logger: logger.NewTestLogger(t), Submitter: submitter}, createdoi.SubmitOptions{})

	var out bytes.Buffer
	summary, err := runner.Run(context.Background(), strings.NewReader(header+"https://example.org/1\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Rejected)
	assert.Contains(t, out.String(), "status=REJECTED")
	assert.Contains(t, out.String(), "Creators: value is empty")
	submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}
