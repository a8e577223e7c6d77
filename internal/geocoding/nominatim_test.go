package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnknownOlympus/datemap/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func respondWith(status int, body string) *mockHTTPClient {
	return &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
			}, nil
		},
	}
}

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				requestCount++
				// Verify request parameters
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org/search")
				assert.Equal(t, "400 Broad St, Seattle, WA 98109", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, "1", req.URL.Query().Get("addressdetails"))
				assert.False(t, req.URL.Query().Has("accept-language"))
				assert.Equal(t, geocoding.DefaultUserAgent, req.Header.Get("User-Agent"))

				responseBody := `[{"lat":"47.6205099","lon":"-122.3492774","display_name":"Space Needle, 400, Broad Street, Seattle"}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(responseBody)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "400 Broad St, Seattle, WA 98109")

		require.NoError(t, err)
		require.NotNil(t, place)
		assert.InEpsilon(t, 47.6205099, place.Latitude, 0.0001)
		assert.InEpsilon(t, -122.3492774, place.Longitude, 0.0001)
		assert.Equal(t, "Space Needle, 400, Broad Street, Seattle", place.DisplayName)
		assert.Equal(t, 1, requestCount, "a lookup is a single request")
	})

	t.Run("options are applied", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "ElenaDatesApp/1.0", req.Header.Get("User-Agent"))
				assert.Equal(t, "en", req.URL.Query().Get("accept-language"))
				assert.Equal(t, "nominatim.example.org", req.URL.Host)
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`[{"lat":"1","lon":"2","display_name":"x"}]`)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(
			mockClient,
			logger,
			geocoding.WithUserAgent("ElenaDatesApp/1.0"),
			geocoding.WithAcceptLanguage("en"),
			geocoding.WithBaseURL("https://nominatim.example.org/search"),
		)
		_, err := provider.Geocode(ctx, "somewhere")

		require.NoError(t, err)
	})

	t.Run("empty user agent keeps default", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, geocoding.DefaultUserAgent, req.Header.Get("User-Agent"))
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(`[]`)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger, geocoding.WithUserAgent(""))
		_, err := provider.Geocode(ctx, "somewhere")

		require.ErrorIs(t, err, geocoding.ErrNoResults)
	})

	t.Run("empty response from API", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(respondWith(http.StatusOK, `[]`), logger)
		place, err := provider.Geocode(ctx, "invalid address")

		require.Error(t, err)
		require.Nil(t, place)
		assert.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
		assert.ErrorIs(t, err, geocoding.ErrNoResults)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		client := respondWith(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`)
		provider := geocoding.NewNominatimProviderWithClient(client, logger)
		place, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, place)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
		assert.NotErrorIs(t, err, geocoding.ErrNoResults)
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(respondWith(http.StatusOK, `invalid json`), logger)
		place, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, place)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		client := respondWith(http.StatusOK, `[{"lat":"invalid","lon":"-122.0842499"}]`)
		provider := geocoding.NewNominatimProviderWithClient(client, logger)
		place, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		client := respondWith(http.StatusOK, `[{"lat":"37.4224764","lon":"invalid"}]`)
		provider := geocoding.NewNominatimProviderWithClient(client, logger)
		place, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, place)
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to execute geocoding request")
	})

	t.Run("context cancellation", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, req.Context().Err()
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		place, err := provider.Geocode(newCtx, "some address")

		require.Error(t, err)
		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, place)
	})
}

func TestNominatimProvider_AgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "85 Pike St", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"47.6097","lon":"-122.3422","display_name":"Pike Place Market"}]`))
	}))
	defer server.Close()

	provider := geocoding.NewNominatimProvider(slog.Default(), geocoding.WithBaseURL(server.URL+"/search"))
	place, err := provider.Geocode(t.Context(), "85 Pike St")

	require.NoError(t, err)
	assert.InEpsilon(t, 47.6097, place.Latitude, 0.0001)
	assert.Equal(t, "Pike Place Market", place.DisplayName)
}
