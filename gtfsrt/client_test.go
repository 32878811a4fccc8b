package gtfsrt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/busboard/internal/feedtest"
)

func TestClient_FetchSendsSubscriptionKey(t *testing.T) {
	body := feedtest.Marshal(t, feedtest.Message(1700000000))
	srv := feedtest.NewServer(t, http.StatusOK, body)

	c := NewClient("secret", "Ocp-Apim-Subscription-Key", time.Second)
	got, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, body, got)
	assert.Equal(t, "secret", srv.LastHeaders().Get("Ocp-Apim-Subscription-Key"))
	assert.Equal(t, "application/x-protobuf", srv.LastHeaders().Get("Accept"))
}

func TestClient_FetchWithoutKeyOmitsHeader(t *testing.T) {
	srv := feedtest.NewServer(t, http.StatusOK, nil)

	c := NewClient("", "Ocp-Apim-Subscription-Key", time.Second)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, srv.LastHeaders().Get("Ocp-Apim-Subscription-Key"))
}

func TestClient_FetchNon2xx(t *testing.T) {
	srv := feedtest.NewServer(t, http.StatusUnauthorized, []byte("denied"))

	c := NewClient("k", "Ocp-Apim-Subscription-Key", time.Second)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrFetch)
	assert.NotErrorIs(t, err, ErrDecode)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusUnauthorized, fe.StatusCode)
	assert.Equal(t, KindFetch, Kind(err))
}

func TestClient_FetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient("", "", 50*time.Millisecond)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestClient_FetchCancelledContext(t *testing.T) {
	srv := feedtest.NewServer(t, http.StatusOK, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("", "", time.Second)
	_, err := c.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_FetchEmptyURL(t *testing.T) {
	c := NewClient("", "", time.Second)
	_, err := c.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrFetch)
}
