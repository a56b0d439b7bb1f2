package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func chartBody(closes string) string {
	return `{"chart":{"result":[{"indicators":{"quote":[{"close":` + closes + `}]}}],"error":null}}`
}

func TestDirectSourceLatestClose(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/AAPL", r.URL.Path)
		w.Write([]byte(chartBody("[100.0,101.5,null]")))
	}))
	defer srv.Close()

	src := NewDirectSource()
	src.BaseURL = srv.URL

	p, err := src.GetPrice(context.Background(), "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, 101.5, p)
}

func TestDirectSourceAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	src := NewDirectSource()
	src.BaseURL = srv.URL

	_, err := src.GetPrice(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestDirectSourceHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewDirectSource()
	src.BaseURL = srv.URL

	_, err := src.GetPrice(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestNewSourceFactory(t *testing.T) {
	t.Parallel()

	src, err := NewSource(SourceConfig{Type: "direct"})
	assert.NoError(t, err)
	assert.IsType(t, &DirectSource{}, src)

	src, err = NewSource(SourceConfig{Type: "observer", DBDir: t.TempDir()})
	assert.NoError(t, err)
	assert.IsType(t, &ObserverSource{}, src)

	_, err = NewSource(SourceConfig{Type: "observer"})
	assert.Error(t, err)

	_, err = NewSource(SourceConfig{Type: "carrier-pigeon"})
	assert.Error(t, err)
}
