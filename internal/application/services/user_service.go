package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/webnyman/three-legged-Oauth/config"
	"github.com/webnyman/three-legged-Oauth/internal/observability"
	"github.com/webnyman/three-legged-Oauth/internal/application/dto"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/httpclient"
	apperrors "github.com/webnyman/three-legged-Oauth/pkg/errors"
	"github.com/webnyman/three-legged-Oauth/pkg/logger"
)

// GrantType is the OAuth grant used when shaping a token request body.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

const (
	activitiesPerPage = 60
	activityPages     = 2
)

// UserService shapes OAuth request bodies and performs the remote calls
// against the platform: token exchange, refresh, profile, activities, group
// projects, and revocation. It holds no state beyond configuration.
type UserService struct {
	cfg    *config.OAuthConfig
	client *httpclient.Client
	log    logger.Logger
}

// NewUserService creates a new user service.
func NewUserService(cfg *config.OAuthConfig, client *httpclient.Client, log logger.Logger) *UserService {
	return &UserService{cfg: cfg, client: client, log: log}
}

// BuildTokenBody constructs the token-endpoint request body for the given
// grant. The authorization_code grant requires a code; the refresh_token
// grant requires a refresh token.
func (s *UserService) BuildTokenBody(grant GrantType, value string) (map[string]string, error) {
	body := map[string]string{
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
		"redirect_uri":  s.cfg.RedirectURI,
		"grant_type":    string(grant),
	}

	switch grant {
	case GrantAuthorizationCode:
		if value == "" {
			return nil, apperrors.NewValidationError("missing_code")
		}
		body["code"] = value
	case GrantRefreshToken:
		if value == "" {
			return nil, apperrors.NewValidationError("missing_refresh_token")
		}
		body["refresh_token"] = value
	default:
		return nil, apperrors.NewValidationError("unsupported_grant_type")
	}

	return body, nil
}

// AuthorizationURL builds the platform authorization URL for a login
// redirect, embedding the per-attempt CSRF state.
func (s *UserService) AuthorizationURL(state string) string {
	return fmt.Sprintf(
		"%s?client_id=%s&redirect_uri=%s&response_type=code&scope=%s&state=%s",
		s.cfg.AuthorizeURL(), s.cfg.ClientID, s.cfg.RedirectURI, s.cfg.RequestedScope, state,
	)
}

// ExchangeCode trades an authorization code for a token pair. The response
// status is passed through uninterpreted.
func (s *UserService) ExchangeCode(ctx context.Context, code string) (*dto.TokenResult, error) {
	return s.tokenRequest(ctx, GrantAuthorizationCode, code)
}

// Refresh renews the token pair using a refresh token. Same contract as
// ExchangeCode.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResult, error) {
	return s.tokenRequest(ctx, GrantRefreshToken, refreshToken)
}

func (s *UserService) tokenRequest(ctx context.Context, grant GrantType, value string) (*dto.TokenResult, error) {
	body, err := s.BuildTokenBody(grant, value)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Post(ctx, s.cfg.TokenURL(), body)
	if err != nil {
		observability.TokenRequestsTotal.WithLabelValues(string(grant), "error").Inc()
		return nil, err
	}
	observability.TokenRequestsTotal.WithLabelValues(string(grant), strconv.Itoa(resp.Status)).Inc()

	result := &dto.TokenResult{Status: resp.Status}
	// The body only carries tokens on success; decode failures on error
	// responses are expected and ignored.
	if derr := resp.DecodeJSON(result); derr != nil && resp.Status == 200 {
		return nil, apperrors.Wrap(derr, "failed to decode token response")
	}
	result.Status = resp.Status
	return result, nil
}

// Profile fetches the user profile and maps it to view data.
func (s *UserService) Profile(ctx context.Context, accessToken string) (*dto.Profile, error) {
	start := time.Now()
	resp, err := s.client.Get(ctx, s.cfg.BaseURL+"/api/v4/user", accessToken)
	if err != nil {
		observeUpstream("profile", 0, err, start)
		return nil, err
	}
	observeUpstream("profile", resp.Status, nil, start)
	if resp.Status != 200 {
		return nil, apperrors.NewAuthenticationError("profile fetch failed", resp.Status)
	}

	var raw struct {
		ID             int    `json:"id"`
		Username       string `json:"username"`
		Name           string `json:"name"`
		State          string `json:"state"`
		AvatarURL      string `json:"avatar_url"`
		Bio            string `json:"bio"`
		LastActivityOn string `json:"last_activity_on"`
		Email          string `json:"email"`
	}
	if err := resp.DecodeJSON(&raw); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode profile")
	}

	return &dto.Profile{
		ID:             raw.ID,
		Username:       raw.Username,
		Name:           raw.Name,
		State:          raw.State,
		Avatar:         raw.AvatarURL,
		Bio:            raw.Bio,
		LastActivityOn: raw.LastActivityOn,
		Email:          raw.Email,
	}, nil
}

// Activities fetches two pages of 60 events each and maps them to view
// data. The pages are fetched concurrently and concatenated in page order.
// A page whose body is not a JSON array is logged and contributes nothing.
func (s *UserService) Activities(ctx context.Context, accessToken string) ([]dto.Activity, error) {
	type rawActivity struct {
		ActionName  string `json:"action_name"`
		CreatedAt   string `json:"created_at"`
		TargetTitle string `json:"target_title"`
		TargetType  string `json:"target_type"`
	}

	pages := make([][]rawActivity, activityPages)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < activityPages; i++ {
		i := i
		g.Go(func() error {
			uri := fmt.Sprintf("%s/api/v4/events?per_page=%d&page=%d",
				s.cfg.BaseURL, activitiesPerPage, i+1)

			start := time.Now()
			resp, err := s.client.Get(gctx, uri, accessToken)
			if err != nil {
				observeUpstream("activities", 0, err, start)
				return err
			}
			observeUpstream("activities", resp.Status, nil, start)

			var items []rawActivity
			if err := resp.DecodeJSON(&items); err != nil {
				// Soft failure: an error object instead of an array
				// skips the page, it does not abort the flow.
				s.log.Warn("events page is not an array, skipping",
					logger.Component("user_service"),
					logger.Int("page", i+1),
					logger.Status(resp.Status),
				)
				return nil
			}
			pages[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	activities := make([]dto.Activity, 0, activityPages*activitiesPerPage)
	for _, page := range pages {
		for _, a := range page {
			activities = append(activities, dto.Activity{
				ActionName:  a.ActionName,
				CreatedAt:   formatActivityTime(a.CreatedAt),
				TargetTitle: a.TargetTitle,
				TargetType:  a.TargetType,
			})
		}
	}
	return activities, nil
}

// GroupProjects runs the fixed group-projects query and returns the raw
// structured result without local interpretation.
func (s *UserService) GroupProjects(ctx context.Context, accessToken string) (json.RawMessage, error) {
	start := time.Now()
	resp, err := s.client.GraphQL(ctx, s.cfg.BaseURL+"/api/graphql", accessToken, currentUserQuery)
	if err != nil {
		observeUpstream("group_projects", 0, err, start)
		return nil, err
	}
	observeUpstream("group_projects", resp.Status, nil, start)
	if resp.Status != 200 {
		return nil, apperrors.NewAuthenticationError("group projects fetch failed", resp.Status)
	}
	return json.RawMessage(resp.Body), nil
}

// Revoke revokes an access token. The response status is passed through
// uninterpreted.
func (s *UserService) Revoke(ctx context.Context, accessToken string) (int, error) {
	body := map[string]string{
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
		"token":         accessToken,
	}

	resp, err := s.client.Post(ctx, s.cfg.RevokeURL(), body)
	if err != nil {
		observability.TokenRevocationsTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	observability.TokenRevocationsTotal.WithLabelValues(strconv.Itoa(resp.Status)).Inc()
	return resp.Status, nil
}

func observeUpstream(operation string, status int, err error, start time.Time) {
	label := "error"
	if err == nil {
		label = strconv.Itoa(status)
	}
	observability.UpstreamRequestDuration.WithLabelValues(operation, label).
		Observe(time.Since(start).Seconds())
}

// formatActivityTime truncates a timestamp to second precision and replaces
// the ISO 'T' separator with a space: "2024-01-01T10:00:00.000Z" becomes
// "2024-01-01 10:00:00".
func formatActivityTime(ts string) string {
	if len(ts) > 19 {
		ts = ts[:19]
	}
	return strings.Replace(ts, "T", " ", 1)
}
