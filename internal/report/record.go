package report

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	// MaxHTMLBytes bounds whole-document uploads and overwrites.
	MaxHTMLBytes = 500_000
	// MaxJSONBytes bounds structured uploads.
	MaxJSONBytes = 300_000
	// MaxUserNameChars bounds the profile display name.
	MaxUserNameChars = 20
	// MaxSelectedBadges bounds the pinned badge selection.
	MaxSelectedBadges = 6
	// MaxAvatarChars bounds the avatar data URL (~100KB raw after base64
	// overhead).
	MaxAvatarChars = 140_000

	defaultEditPassword = "0000"
	avatarPrefix        = "data:image/"
)

var (
	ErrNotFound        = errors.New("report not found")
	ErrForbidden       = errors.New("wrong edit password")
	ErrCorruptedData   = errors.New("stored report is corrupted")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingFields   = errors.New("missing required fields")
)

// Profile is the user-customizable part of a record. It must survive stats
// re-uploads for the same identifier.
type Profile struct {
	UserName       *string  `json:"userName,omitempty"`
	SelectedBadges []string `json:"selectedBadges,omitempty"`
	Avatar         *string  `json:"avatar,omitempty"`
}

// Record is the JSON-shaped stored value. daily_stats and ach_state are
// computed client-side and held verbatim; the server never interprets them.
type Record struct {
	DailyStats json.RawMessage `json:"daily_stats"`
	AchState   json.RawMessage `json:"ach_state"`
	EditPw     string          `json:"edit_pw"`
	Profile    Profile         `json:"profile"`
}

// ProfileUpdate carries a partial profile edit. Nil fields are left
// untouched; SelectedBadges distinguishes absent (nil) from present-empty.
type ProfileUpdate struct {
	UserName       *string   `json:"userName"`
	SelectedBadges *[]string `json:"selectedBadges"`
	Avatar         *string   `json:"avatar"`
}

// Validate applies the per-field bounds of a profile edit.
func (u ProfileUpdate) Validate() error {
	if u.UserName != nil && len([]rune(*u.UserName)) > MaxUserNameChars {
		return ErrInvalidInput
	}
	if u.SelectedBadges != nil && len(*u.SelectedBadges) > MaxSelectedBadges {
		return ErrInvalidInput
	}
	if u.Avatar != nil {
		if !strings.HasPrefix(*u.Avatar, avatarPrefix) {
			return ErrInvalidInput
		}
		if len(*u.Avatar) > MaxAvatarChars {
			return ErrPayloadTooLarge
		}
	}
	return nil
}

// apply merges the validated update into the profile.
func (p *Profile) apply(u ProfileUpdate) {
	if u.UserName != nil {
		trimmed := strings.TrimSpace(*u.UserName)
		p.UserName = &trimmed
	}
	if u.SelectedBadges != nil {
		p.SelectedBadges = *u.SelectedBadges
	}
	if u.Avatar != nil {
		p.Avatar = u.Avatar
	}
}

// looksLikeRecord reports whether a stored value is JSON-shaped rather than
// a raw HTML document.
func looksLikeRecord(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "{")
}
