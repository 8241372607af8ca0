package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingReq() ListingRequest {
	return ListingRequest{
		CategoryCode:          "110-1",
		PathName:              "/Root/Notices",
		PageNo:                1,
		PageSize:              15,
		IsGov:                 true,
		IsProvince:            true,
		ExcludeDistrictPrefix: []string{"90", "006011"},
	}
}

func TestFetchListingPage_RequestBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1), body["pageNo"])
		assert.Equal(t, float64(15), body["pageSize"])
		assert.Equal(t, "110-1", body["categoryCode"])
		assert.Equal(t, "/Root/Notices", body["pathName"])
		assert.Equal(t, true, body["isGov"])
		assert.Equal(t, true, body["isProvince"])
		assert.Equal(t, []any{"90", "006011"}, body["excludeDistrictPrefix"])
		assert.NotZero(t, body["_t"])

		w.Write([]byte(`{"success":true,"result":{"data":{"records":[],"current":1,"total":0,"size":15,"pages":0}}}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchListingPage(context.Background(), listingReq())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestFetchListingPage_RecordsContainer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"data":{
			"records":[{"articleId":"a1","title":"First","budgetPrice":100.5}],
			"current":1,"total":31,"size":15,"pages":3
		}}}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchListingPage(context.Background(), listingReq())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a1", page.Items[0].ArticleID)
	require.NotNil(t, page.Items[0].Title)
	assert.Equal(t, "First", *page.Items[0].Title)
	require.NotNil(t, page.Items[0].BudgetPrice)
	assert.Equal(t, 100.5, *page.Items[0].BudgetPrice)
	assert.Equal(t, 3, page.Pages)
}

func TestFetchListingPage_DataContainerFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"data":{
			"data":[{"articleId":"a2"}],
			"current":1,"total":1,"size":15
		}}}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchListingPage(context.Background(), listingReq())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a2", page.Items[0].ArticleID)
}

func TestFetchListingPage_PagesFallback(t *testing.T) {
	// Server omits "pages": derived from total and size.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"data":{
			"records":[{"articleId":"a1"}],
			"total":52,"size":15
		}}}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchListingPage(context.Background(), listingReq())
	require.NoError(t, err)
	assert.Equal(t, 4, page.Pages)
	assert.Equal(t, 1, page.Current) // falls back to requested page
}

func TestFetchListingPage_SizeFallback(t *testing.T) {
	// Server omits "size" too: the requested page size backs the math.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"data":{"records":[{"articleId":"a1"}],"total":30}}}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchListingPage(context.Background(), listingReq())
	require.NoError(t, err)
	assert.Equal(t, 15, page.Size)
	assert.Equal(t, 2, page.Pages)
}

func TestFetchListingPage_ApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":{"message":"category closed"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchListingPage(context.Background(), listingReq())
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "category closed", appErr.Message)
}

func TestFetchListingPage_MissingContainer(t *testing.T) {
	cases := map[string]string{
		"no result":         `{"success":true}`,
		"data null":         `{"success":true,"result":{"data":null}}`,
		"data not dict":     `{"success":true,"result":{"data":[1,2]}}`,
		"no item array":     `{"success":true,"result":{"data":{"current":1,"total":0}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).FetchListingPage(context.Background(), listingReq())
			var derr *DecodeError
			require.ErrorAs(t, err, &derr)
		})
	}
}
