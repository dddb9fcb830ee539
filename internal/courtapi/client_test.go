package courtapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient uses a near-zero inter-request delay so pagination tests do not
// sleep between pages.
func testClient(baseURL, token string) *Client {
	return NewClient(baseURL, token, time.Microsecond, 5*time.Second)
}

func writePage(t *testing.T, w http.ResponseWriter, next string, results ...any) {
	t.Helper()
	raws := make([]json.RawMessage, 0, len(results))
	for _, r := range results {
		b, err := json.Marshal(r)
		require.NoError(t, err)
		raws = append(raws, b)
	}
	page := map[string]any{"count": len(raws), "results": raws}
	if next != "" {
		page["next"] = next
	}
	require.NoError(t, json.NewEncoder(w).Encode(page))
}

func TestFetchOpinions_FollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			writePage(t, w, srv.URL+"/opinions/?page=2",
				map[string]any{"id": 1, "case_name": "Smith v. Jones"},
				map[string]any{"id": 2, "case_name": "State v. Doe"},
			)
		case "2":
			writePage(t, w, "",
				map[string]any{"id": 3, "case_name": "In re Roe"},
			)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	opinions, err := testClient(srv.URL, "").FetchOpinions(context.Background(), OpinionQuery{})
	require.NoError(t, err)
	require.Len(t, opinions, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{opinions[0].ExternalID, opinions[1].ExternalID, opinions[2].ExternalID})
	assert.Equal(t, "Smith v. Jones", opinions[0].CaseName)
}

func TestFetchOpinions_RecordCap(t *testing.T) {
	var pagesServed atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed.Add(1)
		// Endless pagination: the cap must stop the walk.
		writePage(t, w, srv.URL+"/opinions/?page=next",
			map[string]any{"id": 1},
			map[string]any{"id": 2},
		)
	}))
	defer srv.Close()

	opinions, err := testClient(srv.URL, "").FetchOpinions(context.Background(), OpinionQuery{MaxRecords: 3})
	require.NoError(t, err)
	assert.Len(t, opinions, 3)
	assert.EqualValues(t, 2, pagesServed.Load())
}

func TestFetchOpinions_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writePage(t, w, "")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, "").FetchOpinions(context.Background(), OpinionQuery{
		Jurisdiction: "scotus",
		FiledAfter:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		PageSize:     25,
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "court=scotus")
	assert.Contains(t, gotQuery, "date_filed__gte=2026-01-15")
	assert.Contains(t, gotQuery, "page_size=25")
	assert.Contains(t, gotQuery, "order_by=-date_filed")
}

func TestFetch_NonSuccessStatusFailsHard(t *testing.T) {
	var calls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 2 {
			http.Error(w, "upstream throttled", http.StatusTooManyRequests)
			return
		}
		writePage(t, w, srv.URL+"/opinions/?page=2", map[string]any{"id": 1})
	}))
	defer srv.Close()

	opinions, err := testClient(srv.URL, "").FetchOpinions(context.Background(), OpinionQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Nil(t, opinions, "partial results are discarded on page failure")
}

func TestGet_AuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writePage(t, w, "")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, "secret-token").FetchOpinions(context.Background(), OpinionQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Token secret-token", gotAuth)

	_, err = testClient(srv.URL, "").FetchOpinions(context.Background(), OpinionQuery{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no Authorization header without a token")
}

func TestFetchDocket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dockets/42/", r.URL.Path)
		fmt.Fprint(w, `{"id":42,"court_id":"ca9","case_name":"US v. Example","docket_number":"21-55555"}`)
	}))
	defer srv.Close()

	docket, err := testClient(srv.URL, "").FetchDocket(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, docket.ExternalID)
	assert.Equal(t, "ca9", docket.Court)
	assert.Equal(t, "21-55555", docket.DocketNumber)
}

func TestFetchJudges_Pagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writePage(t, w, "",
			map[string]any{"id": 7, "name_first": "Ada", "name_last": "Lovelace"},
		)
	}))
	defer srv.Close()

	judges, err := testClient(srv.URL, "").FetchJudges(context.Background(), JudgeQuery{Jurisdiction: "ca9"})
	require.NoError(t, err)
	require.Len(t, judges, 1)
	assert.Equal(t, "Ada Lovelace", judges[0].FullName)
}

func TestLimiter_SpacesRequests(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			writePage(t, w, srv.URL+"/opinions/?page=2", map[string]any{"id": 1})
			return
		}
		writePage(t, w, "", map[string]any{"id": 2})
	}))
	defer srv.Close()

	delay := 50 * time.Millisecond
	client := NewClient(srv.URL, "", delay, 5*time.Second)

	start := time.Now()
	_, err := client.FetchOpinions(context.Background(), OpinionQuery{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), delay, "second page must wait out the inter-request delay")
}
