package profile

// CredentialIdentifier is the closed set of authentication mechanisms a
// valid profile can represent. The variant set is fixed; the provider
// resolver switches over it exhaustively.
type CredentialIdentifier interface {
	// Kind returns a short stable name for the mechanism.
	Kind() string

	credentialIdentifier()
}

// SsoSessionCredentials is a profile bound to a named sso-session.
type SsoSessionCredentials struct {
	SessionName string
	AccountID   string
	RoleName    string
}

// LegacySsoCredentials is a profile carrying its own sso_start_url, the
// pre-session SSO configuration style.
type LegacySsoCredentials struct {
	StartURL  string
	Region    string
	AccountID string
	RoleName  string
}

// AssumeRoleCredentials is a profile that exchanges its source's
// credentials for a role. RequiresMfa is set when any profile in the
// resolved ancestor chain declares an mfa_serial.
type AssumeRoleCredentials struct {
	RoleArn         string
	MfaSerial       string
	ExternalID      string
	RoleSessionName string
	SourceProfile   string
	// CredentialSource is set instead of SourceProfile when the base
	// credentials come from the environment rather than another profile.
	CredentialSource string
	RequiresMfa      bool
}

// StaticSessionCredentials is a fixed key pair plus session token.
type StaticSessionCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// StaticCredentials is a fixed long-lived key pair.
type StaticCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// ProcessCredentials shells out to an external credential program.
type ProcessCredentials struct {
	Command string
}

// CredentialSourceCredentials is a profile that names only a
// credential_source: its secrets come straight from the environment,
// instance metadata, or the container endpoint.
type CredentialSourceCredentials struct {
	Source string
}

func (SsoSessionCredentials) Kind() string       { return "sso-session" }
func (LegacySsoCredentials) Kind() string        { return "sso-legacy" }
func (StaticSessionCredentials) Kind() string    { return "static-session" }
func (StaticCredentials) Kind() string           { return "static" }
func (ProcessCredentials) Kind() string          { return "process" }
func (CredentialSourceCredentials) Kind() string { return "credential-source" }

func (a AssumeRoleCredentials) Kind() string {
	if a.RequiresMfa {
		return "assume-role-mfa"
	}
	return "assume-role"
}

func (SsoSessionCredentials) credentialIdentifier()       {}
func (LegacySsoCredentials) credentialIdentifier()        {}
func (AssumeRoleCredentials) credentialIdentifier()       {}
func (StaticSessionCredentials) credentialIdentifier()    {}
func (StaticCredentials) credentialIdentifier()           {}
func (ProcessCredentials) credentialIdentifier()          {}
func (CredentialSourceCredentials) credentialIdentifier() {}

// Classify determines a valid profile's authentication mechanism. The
// precedence order is fixed and first-match-wins; only the profile's own
// properties pick the mechanism, though the MFA sub-classification scans
// the ancestor chain. Profiles matching nothing get an
// unsupported_profile_shape error; that only surfaces when a caller tries
// to build a provider, never during a load.
func Classify(g *Graph, p *Profile) (CredentialIdentifier, error) {
	switch {
	case p.SsoSessionName != "":
		return SsoSessionCredentials{
			SessionName: p.SsoSessionName,
			AccountID:   p.Get(KeySsoAccountID),
			RoleName:    p.Get(KeySsoRoleName),
		}, nil

	case p.Has(KeySsoStartURL):
		return LegacySsoCredentials{
			StartURL:  p.Get(KeySsoStartURL),
			Region:    p.Get(KeySsoRegion),
			AccountID: p.Get(KeySsoAccountID),
			RoleName:  p.Get(KeySsoRoleName),
		}, nil

	case p.Has(KeyRoleArn):
		id := AssumeRoleCredentials{
			RoleArn:          p.Get(KeyRoleArn),
			MfaSerial:        p.Get(KeyMfaSerial),
			ExternalID:       p.Get(KeyExternalID),
			RoleSessionName:  p.Get(KeyRoleSessionName),
			SourceProfile:    p.SourceProfile,
			CredentialSource: p.CredentialSource,
		}
		for _, ancestor := range g.Chain(p.Name) {
			if ancestor.Has(KeyMfaSerial) {
				id.RequiresMfa = true
				break
			}
		}
		return id, nil

	case p.Has(KeyAccessKeyID) && p.Has(KeySessionToken):
		return StaticSessionCredentials{
			AccessKeyID:     p.Get(KeyAccessKeyID),
			SecretAccessKey: p.Get(KeySecretAccessKey),
			SessionToken:    p.Get(KeySessionToken),
		}, nil

	case p.Has(KeyAccessKeyID):
		return StaticCredentials{
			AccessKeyID:     p.Get(KeyAccessKeyID),
			SecretAccessKey: p.Get(KeySecretAccessKey),
		}, nil

	case p.Has(KeyCredentialProcess):
		return ProcessCredentials{Command: p.Get(KeyCredentialProcess)}, nil

	case p.CredentialSource != "":
		return CredentialSourceCredentials{Source: p.CredentialSource}, nil
	}

	return nil, &ProfileError{Code: ErrCodeUnsupportedProfile, Name: p.Name}
}
