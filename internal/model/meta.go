package model

import "strings"

const (
	DefaultLanguage = "hi"
	DefaultLocale   = "hi-IN"
	DefaultTimezone = "Asia/Kolkata"
)

func DefaultSession() Session {
	return Session{}
}

func DefaultAppMeta() AppMeta {
	return AppMeta{
		Initialized: false,
		Language:    DefaultLanguage,
		Theme:       ThemeLight,
		Locale:      DefaultLocale,
		Timezone:    DefaultTimezone,
	}
}

// Validate checks the structure of a session. An absent token is a valid
// signed-out session.
func (s Session) Validate() error {
	if s.Token != "" && strings.TrimSpace(s.UserID) == "" {
		return &ValidationError{Field: "user_id", Reason: "is required for an authenticated session"}
	}
	return nil
}

func (m AppMeta) Validate() error {
	switch {
	case strings.TrimSpace(m.Language) == "":
		return &ValidationError{Field: "language", Reason: "is required"}
	case !m.Theme.Valid():
		return &ValidationError{Field: "theme", Reason: "must be light or dark"}
	case strings.TrimSpace(m.Locale) == "":
		return &ValidationError{Field: "locale", Reason: "is required"}
	case strings.TrimSpace(m.Timezone) == "":
		return &ValidationError{Field: "timezone", Reason: "is required"}
	}
	return nil
}
