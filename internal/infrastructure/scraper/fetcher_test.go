package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pricelens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(html string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
}

func TestFetchPrice_MetaTag(t *testing.T) {
	server := newTestServer(`<html><head>
		<meta property="product:price:amount" content="499.99">
	</head><body><h1>Laptop</h1></body></html>`)
	defer server.Close()

	fetcher := NewFetcher(1024)
	price, err := fetcher.FetchPrice(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "499.99", price)
}

func TestFetchPrice_PriceClass(t *testing.T) {
	server := newTestServer(`<html><body>
		<div class="product"><span class="price">$1,299.99</span></div>
	</body></html>`)
	defer server.Close()

	fetcher := NewFetcher(1024)
	price, err := fetcher.FetchPrice(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "$1,299.99", price)
}

func TestFetchPrice_SelectorPrecedence(t *testing.T) {
	// itemprop beats a generic .price class
	server := newTestServer(`<html><body>
		<span class="price">$99.99</span>
		<span itemprop="price">$89.99</span>
	</body></html>`)
	defer server.Close()

	fetcher := NewFetcher(1024)
	price, err := fetcher.FetchPrice(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "$89.99", price)
}

func TestFetchPrice_BodyTextFallback(t *testing.T) {
	server := newTestServer(`<html><body>
		<p>This widget is available today for $19.99 with free shipping.</p>
	</body></html>`)
	defer server.Close()

	fetcher := NewFetcher(1024)
	price, err := fetcher.FetchPrice(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "$19.99", price)
}

func TestFetchPrice_NoPriceElement(t *testing.T) {
	server := newTestServer(`<html><body><p>Call for price</p></body></html>`)
	defer server.Close()

	fetcher := NewFetcher(1024)
	price, err := fetcher.FetchPrice(context.Background(), server.URL)

	assert.Empty(t, price)
	assert.ErrorIs(t, err, domain.ErrNoPriceFound)
}

func TestFetchPrice_SkipsEmptyPriceElements(t *testing.T) {
	server := newTestServer(`<html><body>
		<span class="price"></span>
		<span class="price">Sale!</span>
		<span class="price">$42.00</span>
	</body></html>`)
	defer server.Close()

	fetcher := NewFetcher(1024)
	price, err := fetcher.FetchPrice(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "$42.00", price)
}

func TestFetchPrice_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(1024)
	_, err := fetcher.FetchPrice(context.Background(), server.URL)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}

func TestFetchPrice_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	fetcher := NewFetcher(1024)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetcher.FetchPrice(ctx, server.URL)

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchPrice_SetsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><body><span class="price">$5.00</span></body></html>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(1024)
	_, err := fetcher.FetchPrice(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}
