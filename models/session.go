package models

// Session holds the authenticated flag plus the profile fields surfaced in
// the UI. It is persisted across restarts; a missing or corrupt stored
// session resolves to the zero value (anonymous).
type Session struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	Email         string `json:"email,omitempty"`
	Token         string `json:"token,omitempty"`
}
