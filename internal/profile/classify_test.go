package profile

import (
	"errors"
	"testing"
)

func classify(t *testing.T, profiles, sessions Records, name string) (CredentialIdentifier, error) {
	t.Helper()
	g, res := load(t, profiles, sessions)
	p, ok := res.ValidProfiles[name]
	if !ok {
		t.Fatalf("profile '%s' did not validate: %v", name, res.InvalidProfiles[name])
	}
	return Classify(g, p)
}

func TestClassifyStaticAndAssumeRole(t *testing.T) {
	profiles := Records{
		"src":  {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
		"role": {KeyRoleArn: "arn1", KeySourceProfile: "src"},
	}

	id, err := classify(t, profiles, nil, "src")
	if err != nil {
		t.Fatalf("classify src: %v", err)
	}
	static, ok := id.(StaticCredentials)
	if !ok {
		t.Fatalf("expected StaticCredentials for 'src', got %T", id)
	}
	if static.AccessKeyID != "K" || static.SecretAccessKey != "S" {
		t.Errorf("unexpected keys: %+v", static)
	}

	id, err = classify(t, profiles, nil, "role")
	if err != nil {
		t.Fatalf("classify role: %v", err)
	}
	role, ok := id.(AssumeRoleCredentials)
	if !ok {
		t.Fatalf("expected AssumeRoleCredentials for 'role', got %T", id)
	}
	if role.RoleArn != "arn1" || role.SourceProfile != "src" {
		t.Errorf("unexpected assume-role fields: %+v", role)
	}
	if role.RequiresMfa {
		t.Error("no mfa_serial anywhere in the chain, RequiresMfa should be false")
	}
}

func TestClassifyMfaFromAncestor(t *testing.T) {
	// mfa_serial sits on the source profile, not the role profile itself
	id, err := classify(t, Records{
		"src": {
			KeyAccessKeyID:     "K",
			KeySecretAccessKey: "S",
			KeyMfaSerial:       "arn:aws:iam::123:mfa/me",
		},
		"role": {KeyRoleArn: "arn1", KeySourceProfile: "src"},
	}, nil, "role")
	if err != nil {
		t.Fatal(err)
	}

	role := id.(AssumeRoleCredentials)
	if !role.RequiresMfa {
		t.Error("expected RequiresMfa from ancestor's mfa_serial")
	}
	if role.Kind() != "assume-role-mfa" {
		t.Errorf("expected kind assume-role-mfa, got %s", role.Kind())
	}
}

func TestClassifyStaticSession(t *testing.T) {
	id, err := classify(t, Records{
		"tmp": {KeyAccessKeyID: "K", KeySecretAccessKey: "S", KeySessionToken: "T"},
	}, nil, "tmp")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := id.(StaticSessionCredentials); !ok {
		t.Errorf("expected StaticSessionCredentials, got %T", id)
	}
}

func TestClassifySsoPrecedence(t *testing.T) {
	// sso_session wins over everything else the profile declares
	id, err := classify(t, Records{
		"p": {
			KeySsoSession:   "corp",
			KeySsoAccountID: "123",
			KeySsoRoleName:  "Admin",
			KeyAccessKeyID:  "K",
		},
	}, Records{
		"corp": {KeySsoStartURL: "https://corp.awsapps.com/start", KeySsoRegion: "us-east-1"},
	}, "p")
	if err != nil {
		t.Fatal(err)
	}

	sso, ok := id.(SsoSessionCredentials)
	if !ok {
		t.Fatalf("expected SsoSessionCredentials, got %T", id)
	}
	if sso.SessionName != "corp" || sso.AccountID != "123" || sso.RoleName != "Admin" {
		t.Errorf("unexpected sso fields: %+v", sso)
	}
}

func TestClassifyLegacySso(t *testing.T) {
	id, err := classify(t, Records{
		"p": {
			KeySsoStartURL:  "https://legacy.awsapps.com/start",
			KeySsoRegion:    "eu-west-1",
			KeySsoAccountID: "123",
			KeySsoRoleName:  "Dev",
		},
	}, nil, "p")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := id.(LegacySsoCredentials); !ok {
		t.Errorf("expected LegacySsoCredentials, got %T", id)
	}
}

func TestClassifyProcess(t *testing.T) {
	id, err := classify(t, Records{
		"p": {KeyCredentialProcess: "/usr/local/bin/fetch-creds --json"},
	}, nil, "p")
	if err != nil {
		t.Fatal(err)
	}
	proc, ok := id.(ProcessCredentials)
	if !ok {
		t.Fatalf("expected ProcessCredentials, got %T", id)
	}
	if proc.Command != "/usr/local/bin/fetch-creds --json" {
		t.Errorf("unexpected command: %s", proc.Command)
	}
}

func TestClassifyUnsupported(t *testing.T) {
	_, err := classify(t, Records{
		"p": {KeyRegion: "us-east-1"}, // nothing credential-shaped
	}, nil, "p")
	if err == nil {
		t.Fatal("expected an error for an unsupported profile shape")
	}

	var perr *ProfileError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProfileError, got %T", err)
	}
	if perr.Code != ErrCodeUnsupportedProfile {
		t.Errorf("expected code %s, got %s", ErrCodeUnsupportedProfile, perr.Code)
	}
	if perr.Name != "p" {
		t.Errorf("expected the error to name 'p', got %s", perr.Name)
	}
}
