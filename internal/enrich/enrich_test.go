// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/messai-quality/internal/httputil"
	"github.com/pdiddy/messai-quality/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// --- stub sources ---

type stubSource struct {
	count *int
	err   error
	panic bool
	block bool
	calls int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) CitationCount(ctx context.Context, _ string) (*int, error) {
	s.calls++
	if s.panic {
		panic("boom")
	}
	if s.block {
		// Ignores ctx on purpose.
		time.Sleep(time.Second)
	}
	return s.count, s.err
}

func intPtr(n int) *int { return &n }

// --- Lookup ---

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		src  *stubSource
		doi  string
		want *int
	}{
		{"known count", &stubSource{count: intPtr(42)}, "10.1/x", intPtr(42)},
		{"known zero", &stubSource{count: intPtr(0)}, "10.1/x", intPtr(0)},
		{"error degrades to unknown", &stubSource{err: errors.New("network down")}, "10.1/x", nil},
		{"panic degrades to unknown", &stubSource{panic: true}, "10.1/x", nil},
		{"negative count rejected", &stubSource{count: intPtr(-3)}, "10.1/x", nil},
		{"empty doi skips source", &stubSource{count: intPtr(7)}, "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lookup(context.Background(), tt.src, tt.doi, time.Second, zaptest.NewLogger(t))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_TimeoutDegradesToUnknown(t *testing.T) {
	src := &stubSource{count: intPtr(500), block: true}
	start := time.Now()
	got := Lookup(context.Background(), src, "10.1/x", 20*time.Millisecond, nil)
	assert.Nil(t, got)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLookup_NilSource(t *testing.T) {
	assert.Nil(t, Lookup(context.Background(), nil, "10.1/x", time.Second, nil))
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct{ in, want string }{
		{"10.1016/j.biortech.2020.123", "10.1016/j.biortech.2020.123"},
		{"https://doi.org/10.1016/ABC", "10.1016/ABC"},
		{"HTTPS://DOI.ORG/10.1/x", "10.1/x"},
		{"http://dx.doi.org/10.1/x", "10.1/x"},
		{"doi: 10.1/x", "10.1/x"},
		{"  10.1/x  ", "10.1/x"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDOI(tt.in))
		})
	}
}

// --- ImpactFactorTable ---

func TestImpactFactorTableLookup(t *testing.T) {
	table := ImpactFactorTable{
		"exact:science":                    44.7,
		"energy & environmental science":   32.4,
		"bioresource technology":           9.7,
		"science of the total environment": 8.2,
	}
	tests := []struct {
		name    string
		journal string
		want    *float64
	}{
		{"substring", "Bioresource Technology Reports", floatPtr(9.7)},
		{"longest match wins", "Energy & Environmental Science", floatPtr(32.4)},
		{"exact entry", "Science", floatPtr(44.7)},
		{"exact entry ignores case and spacing", "  SCIENCE ", floatPtr(44.7)},
		{"exact entry not matched inside a name", "Science Advances", nil},
		{"longer journal keeps its own factor", "Science of the Total Environment", floatPtr(8.2)},
		{"no match", "Journal of Obscure Results", nil},
		{"empty journal", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Lookup(tt.journal))
		})
	}
}

func TestMatchJournal(t *testing.T) {
	patterns := []string{"exact:nature", "exact:cell", "nature energy", "water research"}
	tests := []struct {
		journal string
		want    bool
	}{
		{"Nature", true},
		{"nature energy", true},
		{"Water Research X", true},
		{"Nature Environment and Pollution Technology", false},
		{"Fuel Cells", false},
		{"Cell Reports", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.journal, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchJournal(tt.journal, patterns))
		})
	}
}

func floatPtr(f float64) *float64 { return &f }

// --- CrossRef ---

func withCrossRefServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	old := crossrefAPIBase
	crossrefAPIBase = ts.URL + "/works/"
	t.Cleanup(func() {
		crossrefAPIBase = old
		ts.Close()
	})
	return ts
}

func TestCrossRefSource_CitationCount(t *testing.T) {
	var gotPath, gotMailto, gotUA string
	ts := withCrossRefServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMailto = r.URL.Query().Get("mailto")
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"status":"ok","message":{"DOI":"10.1016/j.jpowsour.2019.01.001","is-referenced-by-count":137}}`)
	})

	src := &CrossRefSource{
		Client: ts.Client(),
		Config: types.EnrichmentConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: "messai-quality/test"},
			Mailto:     "lab@example.org",
		},
	}
	n, err := src.CitationCount(context.Background(), "10.1016/j.jpowsour.2019.01.001")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 137, *n)
	assert.Equal(t, "/works/10.1016/j.jpowsour.2019.01.001", gotPath)
	assert.Equal(t, "lab@example.org", gotMailto)
	assert.Equal(t, "messai-quality/test", gotUA)
}

func TestCrossRefSource_EscapesDOI(t *testing.T) {
	tests := []struct {
		name string
		doi  string
	}{
		{"sici with hash", "10.1002/(SICI)1097-0061(199707)13:9<819::AID-YEA142>3.0.CO;2-#"},
		{"question mark", "10.1000/abc?x=1"},
		{"percent and space", "10.1000/50% off"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotQuery string
			ts := withCrossRefServer(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.RawQuery
				fmt.Fprint(w, `{"status":"ok","message":{"is-referenced-by-count":4}}`)
			})
			src := &CrossRefSource{Client: ts.Client()}
			n, err := src.CitationCount(context.Background(), tt.doi)
			require.NoError(t, err)
			assert.Equal(t, 4, *n)
			assert.Equal(t, "/works/"+tt.doi, gotPath)
			assert.Empty(t, gotQuery)
		})
	}
}

func TestCrossRefSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, "Resource not found.", "HTTP 404"},
		{"malformed json", http.StatusOK, `{"message":`, "parsing CrossRef response"},
		{"missing field", http.StatusOK, `{"status":"ok","message":{"DOI":"10.1/x"}}`, "no is-referenced-by-count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withCrossRefServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			src := &CrossRefSource{Client: ts.Client()}
			n, err := src.CitationCount(context.Background(), "10.1/x")
			require.Error(t, err)
			assert.Nil(t, n)
			assert.Contains(t, err.Error(), tt.wantErr)

			// Through Lookup the failure becomes unknown.
			assert.Nil(t, Lookup(context.Background(), src, "10.1/x", time.Second, nil))
		})
	}
}

func TestCrossRefSource_RetriesOn429(t *testing.T) {
	calls := 0
	ts := withCrossRefServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"message":{"is-referenced-by-count":3}}`)
	})
	src := &CrossRefSource{Client: ts.Client(), Config: types.EnrichmentConfig{MaxRetries: 2}}
	n, err := src.CitationCount(context.Background(), "10.1/x")
	require.NoError(t, err)
	assert.Equal(t, 3, *n)
	assert.Equal(t, 2, calls)
}

// --- OpenAlex ---

func TestOpenAlexSource_CitationCount(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"id":"https://openalex.org/W1","cited_by_count":58}`)
	}))
	defer ts.Close()

	old := openAlexAPIBase
	openAlexAPIBase = ts.URL + "/works/"
	defer func() { openAlexAPIBase = old }()

	src := &OpenAlexSource{Client: ts.Client()}
	n, err := src.CitationCount(context.Background(), "10.1038/nature1")
	require.NoError(t, err)
	assert.Equal(t, 58, *n)
	assert.True(t, strings.HasSuffix(gotPath, "/doi.org/10.1038/nature1"), gotPath)

	sici := "10.1002/(SICI)1097-0061(199707)13:9<819::AID-YEA142>3.0.CO;2-#"
	_, err = src.CitationCount(context.Background(), sici)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(gotPath, "/doi.org/"+sici), gotPath)
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		backend  types.CitationBackend
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{"", "crossref", false, false},
		{types.CitationCrossRef, "crossref", false, false},
		{types.CitationOpenAlex, "openalex", false, false},
		{types.CitationNone, "", true, false},
		{"scopus", "", true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			src, err := NewSource(types.EnrichmentConfig{Backend: tt.backend}, nil, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, src)
				return
			}
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}
