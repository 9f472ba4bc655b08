package profile

// Well-known property keys from the AWS shared config format.
// The engine consumes already-parsed records, so these are the only
// strings it ever interprets; unknown keys are carried along untouched.
const (
	KeySourceProfile     = "source_profile"
	KeyCredentialSource  = "credential_source"
	KeySsoSession        = "sso_session"
	KeyRoleArn           = "role_arn"
	KeyExternalID        = "external_id"
	KeyRoleSessionName   = "role_session_name"
	KeyDurationSeconds   = "duration_seconds"
	KeyMfaSerial         = "mfa_serial"
	KeyAccessKeyID       = "aws_access_key_id"
	KeySecretAccessKey   = "aws_secret_access_key"
	KeySessionToken      = "aws_session_token"
	KeyCredentialProcess = "credential_process"
	KeySsoStartURL       = "sso_start_url"
	KeySsoRegion         = "sso_region"
	KeySsoAccountID      = "sso_account_id"
	KeySsoRoleName       = "sso_role_name"
	KeySsoScopes         = "sso_registration_scopes"
	KeyRegion            = "region"
)

// Supported credential_source values, as the shared config format spells them.
const (
	CredentialSourceEnvironment = "Environment"
	CredentialSourceEc2Metadata = "Ec2InstanceMetadata"
	CredentialSourceEcs         = "EcsContainer"
)

// Records maps a profile or sso-session name to its raw property mapping,
// exactly as produced by the external config parser.
type Records = map[string]map[string]string
