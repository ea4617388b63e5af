package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/config"
	"github.com/hwangtech/linebot-backend/internal/entity"
	pkgRetry "github.com/hwangtech/linebot-backend/internal/pkg/retry"
)

func testConnector(t *testing.T, srv *httptest.Server, attempts uint) *Connector {
	t.Helper()

	cfg := config.PipelineConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:                   srv.URL,
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           5 * time.Second,
			KeepAlive:             time.Minute,
			IdleConnTimeout:       time.Minute,
			ResponseHeaderTimeout: 5 * time.Second,
		},
		AnswerEndpoint: "/answer",
		IndexEndpoint:  "/index",
		Retry: pkgRetry.Config{
			Attempts: attempts,
			Delay:    time.Millisecond,
			MaxDelay: 5 * time.Millisecond,
		},
	}
	return NewConnector(cfg, zap.NewNop())
}

func TestAnswerSuccess(t *testing.T) {
	var gotReq entity.PipelineAnswerRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/answer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"Bitcoin is a peer-to-peer currency.","sources":["bitcoin_paper.pdf"]}`))
	}))
	defer srv.Close()

	c := testConnector(t, srv, 1)
	answer, err := c.Answer(context.Background(), &entity.PipelineAnswerRequest{
		Question: "what is bitcoin?",
		History:  []entity.HistoryPair{{Question: "hi", Answer: "hello"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Bitcoin is a peer-to-peer currency.", answer.Answer)
	require.Equal(t, []string{"bitcoin_paper.pdf"}, answer.Sources)

	require.Equal(t, "what is bitcoin?", gotReq.Question)
	require.Len(t, gotReq.History, 1)
}

func TestAnswerRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"answer":"eventually"}`))
	}))
	defer srv.Close()

	c := testConnector(t, srv, 3)
	answer, err := c.Answer(context.Background(), &entity.PipelineAnswerRequest{Question: "q"})
	require.NoError(t, err)
	require.Equal(t, "eventually", answer.Answer)
	require.EqualValues(t, 3, calls.Load())
}

func TestAnswerExhaustsRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testConnector(t, srv, 3)
	_, err := c.Answer(context.Background(), &entity.PipelineAnswerRequest{Question: "q"})
	require.Error(t, err)
	require.EqualValues(t, 3, calls.Load())
}

func TestAnswerRejectsEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":""}`))
	}))
	defer srv.Close()

	c := testConnector(t, srv, 1)
	_, err := c.Answer(context.Background(), &entity.PipelineAnswerRequest{Question: "q"})
	require.ErrorIs(t, err, entity.ErrEmptyAnswer)
}

func TestIndexDocumentUploadsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/index", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "bitcoin_paper.pdf", header.Filename)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testConnector(t, srv, 1)
	err := c.IndexDocument(context.Background(), "bitcoin_paper.pdf", []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
}

func TestIndexDocumentSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"unsupported file type"}`))
	}))
	defer srv.Close()

	c := testConnector(t, srv, 1)
	err := c.IndexDocument(context.Background(), "notes.xyz", []byte("data"))
	require.Error(t, err)
	require.False(t, errors.Is(err, entity.ErrEmptyAnswer))
}
