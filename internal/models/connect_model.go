package models

import "time"

type ConnectState string

const (
	ConnectValidating ConnectState = "validating"
	ConnectValid      ConnectState = "valid"
	ConnectInvalid    ConnectState = "invalid"
)

type ConnectAttempt struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Platform      Platform        `json:"platform"`
	State         ConnectState    `json:"state"`
	Message       string          `json:"message"`
	AuthURL       string          `json:"auth_url"`
	Baseline      map[string]bool `json:"baseline"`
	BaselineKnown bool            `json:"baseline_known"`
	WindowClosed  bool            `json:"window_closed"`
	AccountID     string          `json:"account_id"`
	StartedAt     time.Time       `json:"started_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (a *ConnectAttempt) Done() bool {
	return a.State == ConnectValid || a.State == ConnectInvalid
}

type ConnectStatus struct {
	ID        string       `json:"id"`
	Platform  Platform     `json:"platform"`
	State     ConnectState `json:"state"`
	Message   string       `json:"message"`
	AuthURL   string       `json:"auth_url,omitempty"`
	AccountID string       `json:"account_id,omitempty"`
}

func (a *ConnectAttempt) Status() ConnectStatus {
	return ConnectStatus{
		ID:        a.ID,
		Platform:  a.Platform,
		State:     a.State,
		Message:   a.Message,
		AuthURL:   a.AuthURL,
		AccountID: a.AccountID,
	}
}
