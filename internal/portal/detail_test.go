package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDetail_WrappedData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/portal/detail", r.URL.Path)
		assert.Equal(t, "a1", r.URL.Query().Get("articleId"))
		assert.NotEmpty(t, r.URL.Query().Get("timestamp"))
		w.Write([]byte(`{"success":true,"result":{"data":{
			"title":"Tender award",
			"author":"Bureau",
			"htmlContent":"<p>body</p>",
			"attachmentCount":2,
			"totalContractAmount":12345.67
		}}}`))
	}))
	defer srv.Close()

	d, err := newTestClient(srv.URL).FetchDetail(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", d.ArticleID)
	require.NotNil(t, d.Title)
	assert.Equal(t, "Tender award", *d.Title)
	require.NotNil(t, d.Author)
	assert.Equal(t, "Bureau", *d.Author)
	require.NotNil(t, d.HTMLContent)
	assert.Equal(t, "<p>body</p>", *d.HTMLContent)
	require.NotNil(t, d.AttachmentCount)
	assert.Equal(t, int64(2), *d.AttachmentCount)
	require.NotNil(t, d.TotalContractAmount)
	assert.Equal(t, 12345.67, *d.TotalContractAmount)
}

func TestFetchDetail_BareResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"title":"Direct","supplierName":"ACME"}}`))
	}))
	defer srv.Close()

	d, err := newTestClient(srv.URL).FetchDetail(context.Background(), "a2")
	require.NoError(t, err)
	require.NotNil(t, d.Title)
	assert.Equal(t, "Direct", *d.Title)
	require.NotNil(t, d.SupplierName)
	assert.Equal(t, "ACME", *d.SupplierName)
}

func TestFetchDetail_ContentFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"data":{"content":"<div>legacy</div>"}}}`))
	}))
	defer srv.Close()

	d, err := newTestClient(srv.URL).FetchDetail(context.Background(), "a3")
	require.NoError(t, err)
	require.NotNil(t, d.HTMLContent)
	assert.Equal(t, "<div>legacy</div>", *d.HTMLContent)
}

func TestFetchDetail_HTMLContentWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"data":{"htmlContent":"<p>new</p>","content":"<p>old</p>"}}}`))
	}))
	defer srv.Close()

	d, err := newTestClient(srv.URL).FetchDetail(context.Background(), "a4")
	require.NoError(t, err)
	require.NotNil(t, d.HTMLContent)
	assert.Equal(t, "<p>new</p>", *d.HTMLContent)
}

func TestFetchDetail_ApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":{"message":"article removed"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchDetail(context.Background(), "gone")
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "article removed", appErr.Message)
}

func TestFetchDetail_InvalidPayload(t *testing.T) {
	cases := map[string]string{
		"no result":     `{"success":true}`,
		"result scalar": `{"success":true,"result":"oops"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).FetchDetail(context.Background(), "a5")
			var derr *DecodeError
			require.ErrorAs(t, err, &derr)
		})
	}
}
