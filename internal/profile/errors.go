package profile

import (
	"fmt"
	"strings"
)

// ErrorCode identifies one class of profile or sso-session misconfiguration.
type ErrorCode string

const (
	ErrCodeSelfReference         ErrorCode = "self_reference"
	ErrCodeCycle                 ErrorCode = "cycle"
	ErrCodeSourceProfileNotFound ErrorCode = "source_profile_not_found"
	ErrCodeDuplicateSource       ErrorCode = "duplicate_source"
	ErrCodeMissingSource         ErrorCode = "missing_source"
	ErrCodeInvalidCredSource     ErrorCode = "invalid_credential_source"
	ErrCodeMissingProperty       ErrorCode = "missing_property"
	ErrCodeSsoSessionNotFound    ErrorCode = "sso_session_not_found"
	ErrCodeUnsupportedProfile    ErrorCode = "unsupported_profile_shape"
)

// ProfileError describes why one named profile or sso-session is unusable.
// Errors are data: a load never aborts because of one, and every descendant
// of a broken profile shares the ancestor's error value by pointer so the
// root cause stays traceable.
type ProfileError struct {
	Code ErrorCode
	// Name is the profile or sso-session the error was derived from (the
	// root cause), not necessarily the profile it is reported under.
	Name string
	// Path is the arrow-joined visit order for circular chains.
	Path []string
	// Target is the missing reference for not-found errors.
	Target string
	// Key is the absent property for missing_property errors.
	Key string
}

func (e *ProfileError) Error() string {
	switch e.Code {
	case ErrCodeSelfReference, ErrCodeCycle:
		return fmt.Sprintf("profile '%s' is part of a circular source_profile chain: %s",
			e.Name, strings.Join(e.Path, "->"))
	case ErrCodeSourceProfileNotFound:
		return fmt.Sprintf("profile '%s' references source profile '%s' which does not exist", e.Name, e.Target)
	case ErrCodeDuplicateSource:
		return fmt.Sprintf("profile '%s' declares both source_profile and credential_source", e.Name)
	case ErrCodeMissingSource:
		return fmt.Sprintf("profile '%s' declares a role_arn but neither source_profile nor credential_source", e.Name)
	case ErrCodeInvalidCredSource:
		return fmt.Sprintf("profile '%s' has unsupported credential_source '%s'", e.Name, e.Target)
	case ErrCodeMissingProperty:
		return fmt.Sprintf("sso-session '%s' is missing required property '%s'", e.Name, e.Key)
	case ErrCodeSsoSessionNotFound:
		return fmt.Sprintf("profile '%s' references sso-session '%s' which does not exist", e.Name, e.Target)
	case ErrCodeUnsupportedProfile:
		return fmt.Sprintf("profile '%s' does not match any supported credential type", e.Name)
	default:
		return fmt.Sprintf("profile '%s': %s", e.Name, e.Code)
	}
}
