package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maheshrc27/postflow-studio/internal/models"
)

var (
	ErrMissingContent      = errors.New("add a caption or attach media before scheduling")
	ErrNoAccounts          = errors.New("select at least one account")
	ErrNoSchedule          = errors.New("pick a time to schedule the post")
	ErrScheduleTooSoon     = errors.New("scheduled time must be at least 5 minutes from now")
	ErrVideoRequired       = errors.New("this post type needs a video attachment")
	ErrBoxLocked           = errors.New("content box is locked by a selected post type")
	ErrUnknownBox          = errors.New("unknown content box")
	ErrUnknownAccount      = errors.New("account is not connected")
	ErrAccountNotSelected  = errors.New("select the account first")
	ErrUnknownPostType     = errors.New("post type is not available for this platform")
	ErrUnknownMedia        = errors.New("media item not found")
	ErrUnsupportedMedia    = errors.New("unsupported media type")
	ErrNoCompatibleTargets = errors.New("none of the selected accounts can publish this media")
	ErrEmptyPrompt         = errors.New("enter a prompt first")
	ErrSubmitInFlight      = errors.New("a submission is already in progress")
	ErrUnsupported         = errors.New("not supported for this platform")
	ErrAttemptNotFound     = errors.New("connect attempt not found")
	ErrNothingToSave       = errors.New("enter an API key first")
)

// MissingPostTypesError lists the selected accounts that have no post type.
type MissingPostTypesError struct {
	Accounts []string
}

func (e *MissingPostTypesError) Error() string {
	return "choose a post type for: " + strings.Join(e.Accounts, ", ")
}

// MediaIssue explains why the attached media cannot go to one account.
type MediaIssue struct {
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Platform    models.Platform `json:"platform"`
	Reasons     []string        `json:"reasons"`
}

// IncompatibleMediaError is returned until the caller confirms that the
// listed accounts should be left out of the submission.
type IncompatibleMediaError struct {
	Issues []MediaIssue
}

func (e *IncompatibleMediaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s (%s)", is.AccountName, strings.Join(is.Reasons, "; ")))
	}
	return "media is not compatible with " + strings.Join(parts, ", ")
}

// IsValidation reports whether err was raised locally, before any call to
// the backend.
func IsValidation(err error) bool {
	var missing *MissingPostTypesError
	if errors.As(err, &missing) {
		return true
	}
	for _, target := range []error{
		ErrMissingContent, ErrNoAccounts, ErrNoSchedule, ErrScheduleTooSoon,
		ErrVideoRequired, ErrBoxLocked, ErrUnknownBox, ErrUnknownAccount,
		ErrAccountNotSelected, ErrUnknownPostType, ErrUnknownMedia,
		ErrUnsupportedMedia, ErrNoCompatibleTargets, ErrEmptyPrompt, ErrNothingToSave,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
