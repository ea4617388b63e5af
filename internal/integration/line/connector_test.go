package line

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/config"
	"github.com/hwangtech/linebot-backend/internal/entity"
	pkghttp "github.com/hwangtech/linebot-backend/pkg/http"
)

func testConnector(t *testing.T, srv *httptest.Server) *Connector {
	t.Helper()

	cfg := config.LineConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:                   srv.URL,
			Token:                 "channel-access-token",
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           5 * time.Second,
			KeepAlive:             time.Minute,
			IdleConnTimeout:       time.Minute,
			ResponseHeaderTimeout: 5 * time.Second,
		},
		ChannelSecret: "secret",
	}
	return NewConnector(cfg, zap.NewNop())
}

func TestReplySendsExpectedRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody entity.LineReplyRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testConnector(t, srv)
	err := c.Reply(context.Background(), "reply-token-1", "hi there")
	require.NoError(t, err)

	require.Equal(t, "/v2/bot/message/reply", gotPath)
	require.Equal(t, "Bearer channel-access-token", gotAuth)
	require.Equal(t, "reply-token-1", gotBody.ReplyToken)
	require.Len(t, gotBody.Messages, 1)
	require.Equal(t, "text", gotBody.Messages[0].Type)
	require.Equal(t, "hi there", gotBody.Messages[0].Text)
}

func TestReplyNonSuccessStatusIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid reply token"}`))
	}))
	defer srv.Close()

	c := testConnector(t, srv)
	err := c.Reply(context.Background(), "expired-token", "late answer")
	require.Error(t, err)

	var httpErr *pkghttp.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	require.Contains(t, httpErr.Body, "Invalid reply token")
}

func TestPushSendsExpectedRequest(t *testing.T) {
	var gotPath string
	var gotBody entity.LinePushRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testConnector(t, srv)
	require.NoError(t, c.Push(context.Background(), "U1", "announcement"))

	require.Equal(t, "/v2/bot/message/push", gotPath)
	require.Equal(t, "U1", gotBody.To)
	require.Len(t, gotBody.Messages, 1)
	require.Equal(t, "announcement", gotBody.Messages[0].Text)
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/bot/profile/U1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"userId":"U1","displayName":"Alice","statusMessage":"hey"}`))
	}))
	defer srv.Close()

	c := testConnector(t, srv)
	profile, err := c.GetProfile(context.Background(), "U1")
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.DisplayName)
	require.Equal(t, "U1", profile.UserID)
}

func TestGetQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/bot/message/quota/consumption", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalUsage":42}`))
	}))
	defer srv.Close()

	c := testConnector(t, srv)
	quota, err := c.GetQuota(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 42, quota.TotalUsage)
}
