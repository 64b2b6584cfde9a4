// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("successfully creates server with valid config", func(t *testing.T) {
		ctx := t.Context()
		t.Setenv("HTTP_PORT", "3000")

		srv, err := NewServer(ctx)
		require.NoError(t, err)
		require.NotNil(t, srv)

		app := srv.(*impServer).App()
		require.NotNil(t, app)

		request := httptest.NewRequest(http.MethodGet, "/-/healthz", nil)
		response, err := app.Test(request)
		require.NoError(t, err)
		defer response.Body.Close()

		require.Equal(t, http.StatusOK, response.StatusCode)

		body := map[string]string{}
		require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
		assert.Equal(t, serviceName, body["name"])
		assert.Equal(t, "OK", body["status"])
	})

	t.Run("fails with invalid config", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "notaport")

		srv, err := NewServer(t.Context())
		require.Error(t, err)
		require.Nil(t, srv)
	})
}

func TestAddRoute(t *testing.T) {
	testCases := map[string]struct {
		handler            Handler
		expectedStatusCode int
		expectedBody       map[string]any
	}{
		"handler result is serialized as json": {
			handler: func(_ context.Context, params map[string]string) (any, error) {
				return map[string]string{"pipeline": params["pipeline"], "runId": "test-run"}, nil
			},
			expectedStatusCode: http.StatusOK,
			expectedBody: map[string]any{
				"pipeline": "trends",
				"runId":    "test-run",
			},
		},
		"nil result returns no content": {
			handler: func(context.Context, map[string]string) (any, error) {
				return nil, nil
			},
			expectedStatusCode: http.StatusNoContent,
		},
		"handler error returns internal server error": {
			handler: func(context.Context, map[string]string) (any, error) {
				return nil, assert.AnError
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedBody: map[string]any{
				"statusCode": float64(http.StatusInternalServerError),
				"error":      http.StatusText(http.StatusInternalServerError),
				"message":    assert.AnError.Error(),
			},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			srv, err := NewServer(t.Context())
			require.NoError(t, err)

			srv.AddRoute(http.MethodPost, "/-/run/:pipeline", testCase.handler)

			request := httptest.NewRequest(http.MethodPost, "/-/run/trends", nil)
			response, err := srv.(*impServer).App().Test(request)
			require.NoError(t, err)
			defer response.Body.Close()

			assert.Equal(t, testCase.expectedStatusCode, response.StatusCode)
			if testCase.expectedBody != nil {
				body := map[string]any{}
				require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
				assert.Equal(t, testCase.expectedBody, body)
			}
		})
	}
}

func TestStartServer(t *testing.T) {
	t.Run("starts and stops the server successfully", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "3001")

		srv, err := NewServer(t.Context())
		require.NoError(t, err)

		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.Start()
		}()

		time.Sleep(1 * time.Second)
		request := httptest.NewRequest(http.MethodGet, "/-/healthz", nil)
		response, err := srv.(*impServer).App().Test(request)
		require.NoError(t, err)
		response.Body.Close()
		require.Equal(t, http.StatusOK, response.StatusCode)

		require.NoError(t, srv.Stop())
		require.NoError(t, <-errChan)
	})
}

func TestStartAsyncServer(t *testing.T) {
	t.Run("starts the server asynchronously", func(t *testing.T) {
		ctx := t.Context()
		t.Setenv("HTTP_PORT", "3002")

		srv, err := NewServer(ctx)
		require.NoError(t, err)

		srv.StartAsync(ctx)

		time.Sleep(1 * time.Second)
		request := httptest.NewRequest(http.MethodGet, "/-/healthz", nil)
		response, err := srv.(*impServer).App().Test(request)
		require.NoError(t, err)
		response.Body.Close()
		require.Equal(t, http.StatusOK, response.StatusCode)

		require.NoError(t, srv.Stop())
	})
}
