package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webnyman/three-legged-Oauth/config"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/httpclient"
	apperrors "github.com/webnyman/three-legged-Oauth/pkg/errors"
	"github.com/webnyman/three-legged-Oauth/pkg/logger"
)

func newTestService(baseURL string) *UserService {
	cfg := &config.OAuthConfig{
		BaseURL:        baseURL,
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		RedirectURI:    "http://localhost:8080/user/callback",
		RequestedScope: "read_user read_api",
		RequestTimeout: 5 * time.Second,
	}
	return NewUserService(cfg, httpclient.New(cfg.RequestTimeout), logger.Default())
}

func TestBuildTokenBody_AuthorizationCode(t *testing.T) {
	svc := newTestService("https://gitlab.example.com")

	body, err := svc.BuildTokenBody(GrantAuthorizationCode, "the-code")
	require.NoError(t, err)

	assert.Equal(t, "client-id", body["client_id"])
	assert.Equal(t, "client-secret", body["client_secret"])
	assert.Equal(t, "http://localhost:8080/user/callback", body["redirect_uri"])
	assert.Equal(t, "authorization_code", body["grant_type"])
	assert.Equal(t, "the-code", body["code"])
	assert.NotContains(t, body, "refresh_token")
}

func TestBuildTokenBody_RefreshToken(t *testing.T) {
	svc := newTestService("https://gitlab.example.com")

	body, err := svc.BuildTokenBody(GrantRefreshToken, "the-refresh-token")
	require.NoError(t, err)

	assert.Equal(t, "refresh_token", body["grant_type"])
	assert.Equal(t, "the-refresh-token", body["refresh_token"])
	assert.NotContains(t, body, "code")
}

func TestBuildTokenBody_MissingCode(t *testing.T) {
	svc := newTestService("https://gitlab.example.com")

	_, err := svc.BuildTokenBody(GrantAuthorizationCode, "")

	var valErr *apperrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "missing_code", valErr.Reason)
}

func TestBuildTokenBody_MissingRefreshToken(t *testing.T) {
	svc := newTestService("https://gitlab.example.com")

	_, err := svc.BuildTokenBody(GrantRefreshToken, "")

	var valErr *apperrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "missing_refresh_token", valErr.Reason)
}

func TestAuthorizationURL_EmbedsState(t *testing.T) {
	svc := newTestService("https://gitlab.example.com")

	url := svc.AuthorizationURL("nonce-123")

	assert.Contains(t, url, "https://gitlab.example.com/oauth/authorize?")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "response_type=code")
	assert.Contains(t, url, "state=nonce-123")
}

func TestExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)

		var body map[string]string
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		assert.Equal(t, "authorization_code", body["grant_type"])
		assert.Equal(t, "the-code", body["code"])

		w.Write([]byte(`{"access_token":"at","refresh_token":"rt"}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	result, err := svc.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, 200, result.Status)
	assert.Equal(t, "at", result.AccessToken)
	assert.Equal(t, "rt", result.RefreshToken)
}

func TestExchangeCode_Non200PassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	result, err := svc.ExchangeCode(context.Background(), "bad-code")

	// Status interpretation is the controller's job.
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, result.Status)
	assert.Empty(t, result.AccessToken)
}

func TestRefresh_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		assert.Equal(t, "refresh_token", body["grant_type"])
		assert.Equal(t, "old-rt", body["refresh_token"])

		w.Write([]byte(`{"access_token":"new-at","refresh_token":"new-rt"}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	result, err := svc.Refresh(context.Background(), "old-rt")
	require.NoError(t, err)

	assert.Equal(t, "new-at", result.AccessToken)
	assert.Equal(t, "new-rt", result.RefreshToken)
}

func TestProfile_MapsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v4/user", r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))

		w.Write([]byte(`{
			"id": 42,
			"username": "jdoe",
			"name": "J. Doe",
			"state": "active",
			"avatar_url": "https://gitlab.example.com/avatar.png",
			"bio": "hello",
			"last_activity_on": "2024-01-01",
			"email": "jdoe@example.com"
		}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	profile, err := svc.Profile(context.Background(), "at")
	require.NoError(t, err)

	assert.Equal(t, 42, profile.ID)
	assert.Equal(t, "jdoe", profile.Username)
	assert.Equal(t, "https://gitlab.example.com/avatar.png", profile.Avatar)
	assert.Equal(t, "jdoe@example.com", profile.Email)
}

func TestProfile_OmitsAbsentFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 42, "username": "jdoe"}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	profile, err := svc.Profile(context.Background(), "at")
	require.NoError(t, err)

	data, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"username":"jdoe"}`, string(data))
}

func TestProfile_Non200IsAuthenticationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	_, err := svc.Profile(context.Background(), "expired")

	var authErr *apperrors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func activitiesPage(page, count int) string {
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(
			`{"action_name":"pushed to","created_at":"2024-01-0%dT10:00:%02d.000Z","target_title":"t","target_type":"Commit"}`,
			page, i%60))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestActivities_TwoPagesConcatenated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v4/events", r.URL.Path)
		assert.Equal(t, "60", r.URL.Query().Get("per_page"))

		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(activitiesPage(1, 60)))
		case "2":
			w.Write([]byte(activitiesPage(2, 60)))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	activities, err := svc.Activities(context.Background(), "at")
	require.NoError(t, err)

	require.Len(t, activities, 120)
	// Page order is preserved even though pages are fetched concurrently.
	assert.Equal(t, "2024-01-01 10:00:00", activities[0].CreatedAt)
	assert.Equal(t, "2024-01-02 10:00:00", activities[60].CreatedAt)
}

func TestActivities_TimestampNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(`[{"action_name":"pushed to","created_at":"2024-01-01T10:00:00.000Z","target_title":"x","target_type":"Commit"}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	activities, err := svc.Activities(context.Background(), "at")
	require.NoError(t, err)

	require.Len(t, activities, 1)
	assert.Equal(t, "2024-01-01 10:00:00", activities[0].CreatedAt)
	assert.Equal(t, "pushed to", activities[0].ActionName)
}

func TestActivities_NonArrayPageSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(activitiesPage(1, 60)))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"403 Forbidden"}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	activities, err := svc.Activities(context.Background(), "at")

	// The bad page contributes nothing; the flow still completes.
	require.NoError(t, err)
	assert.Len(t, activities, 60)
}

func TestGroupProjects_ReturnsRawResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/graphql", r.URL.Path)

		var payload map[string]string
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &payload)
		assert.Contains(t, payload["query"], "currentUser")

		w.Write([]byte(`{"data":{"currentUser":{"groups":{"nodes":[]}}}}`))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	result, err := svc.GroupProjects(context.Background(), "at")
	require.NoError(t, err)

	assert.JSONEq(t, `{"data":{"currentUser":{"groups":{"nodes":[]}}}}`, string(result))
}

func TestRevoke_StatusPassedThrough(t *testing.T) {
	for _, status := range []int{200, 401, 503} {
		t.Run(fmt.Sprintf("status_%d", status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/oauth/revoke", r.URL.Path)

				var body map[string]string
				data, _ := io.ReadAll(r.Body)
				json.Unmarshal(data, &body)
				assert.Equal(t, "at", body["token"])

				w.WriteHeader(status)
			}))
			defer srv.Close()

			svc := newTestService(srv.URL)
			got, err := svc.Revoke(context.Background(), "at")
			require.NoError(t, err)
			assert.Equal(t, status, got)
		})
	}
}

func TestFormatActivityTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-01T10:00:00.000Z", "2024-01-01 10:00:00"},
		{"2024-01-01T10:00:00Z", "2024-01-01 10:00:00"},
		{"2024-01-01T10:00:00", "2024-01-01 10:00:00"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatActivityTime(tt.in))
	}
}
