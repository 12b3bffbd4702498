package dto

// TokenResult carries the raw outcome of a token-endpoint call. The status
// is passed through uninterpreted; the caller decides what a non-200 means.
type TokenResult struct {
	Status       int    `json:"status"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Profile is the normalized user profile shown on the profile page. Fields
// absent from the remote payload stay empty and are omitted, not defaulted.
type Profile struct {
	ID             int    `json:"id,omitempty"`
	Username       string `json:"username,omitempty"`
	Name           string `json:"name,omitempty"`
	State          string `json:"state,omitempty"`
	Avatar         string `json:"avatar,omitempty"`
	Bio            string `json:"bio,omitempty"`
	LastActivityOn string `json:"last_activity_on,omitempty"`
	Email          string `json:"email,omitempty"`
}

// Activity is one normalized event on the activities page.
type Activity struct {
	ActionName  string `json:"action_name"`
	CreatedAt   string `json:"created_at"`
	TargetTitle string `json:"target_title"`
	TargetType  string `json:"target_type"`
}
