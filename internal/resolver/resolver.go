// Package resolver materializes aws.CredentialsProvider chains for validated
// profiles. Construction is recursive (an assume-role profile resolves its
// source first), memoized per profile name, and invalidated together with
// everything that depends on an entry when the underlying profile changes.
package resolver

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go-v2/credentials/endpointcreds"
	"github.com/aws/aws-sdk-go-v2/credentials/processcreds"
	"github.com/aws/aws-sdk-go-v2/credentials/ssocreds"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sso"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go/logging"

	"github.com/chukul/profilectl/internal/profile"
)

const ecsCredentialsEndpoint = "http://169.254.170.2"

// Options configures a Resolver. The client factories exist so tests can
// substitute fakes; the defaults build real SDK clients from a minimal
// aws.Config, which is synchronous and does no I/O.
type Options struct {
	// DefaultRegion is used when neither the profile nor its sso-session
	// declares one.
	DefaultRegion string

	// MfaTokenProvider supplies the one-time code for MFA-gated
	// assume-role profiles. Defaults to stscreds.StdinTokenProvider.
	MfaTokenProvider func(serial string) (string, error)

	Logger logging.Logger

	STSClient  func(aws.Config) stscreds.AssumeRoleAPIClient
	SSOClient  func(aws.Config) ssocreds.GetRoleCredentialsAPIClient
	OIDCClient func(aws.Config) ssocreds.CreateTokenAPIClient
}

// Resolver builds and caches credential providers against the registry's
// current valid graph. Lookups can come from any goroutine; map mutation is
// guarded by one mutex while each entry is built under its own sync.Once so
// unrelated profiles never block each other.
type Resolver struct {
	registry *profile.Registry
	opts     Options

	mu      sync.Mutex
	entries map[string]*entry
	tokens  map[string]*ssocreds.SSOTokenProvider
}

type entry struct {
	once     sync.Once
	provider aws.CredentialsProvider
	err      error
}

// New returns a Resolver bound to the registry. It subscribes to change
// events so entries for modified or removed profiles (and everything built
// on top of them) are evicted automatically.
func New(registry *profile.Registry, optFns ...func(*Options)) *Resolver {
	opts := Options{
		Logger: logging.Nop{},
		MfaTokenProvider: func(string) (string, error) {
			return stscreds.StdinTokenProvider()
		},
		STSClient: func(cfg aws.Config) stscreds.AssumeRoleAPIClient {
			return sts.NewFromConfig(cfg)
		},
		SSOClient: func(cfg aws.Config) ssocreds.GetRoleCredentialsAPIClient {
			return sso.NewFromConfig(cfg)
		},
		OIDCClient: func(cfg aws.Config) ssocreds.CreateTokenAPIClient {
			return ssooidc.NewFromConfig(cfg)
		},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Resolver{
		registry: registry,
		opts:     opts,
		entries:  make(map[string]*entry),
		tokens:   make(map[string]*ssocreds.SSOTokenProvider),
	}
	registry.Subscribe(r.onChange)
	return r
}

func (r *Resolver) onChange(e profile.ChangeEvent) {
	for _, name := range e.ProfilesModified {
		r.Invalidate(name)
	}
	for _, name := range e.ProfilesRemoved {
		r.Invalidate(name)
	}
	for _, name := range e.SsoSessionsModified {
		r.Invalidate(name)
	}
	for _, name := range e.SsoSessionsRemoved {
		r.Invalidate(name)
	}
}

// Resolve returns the credential provider for a valid profile, building it
// (and its ancestors) on first use. The provider's Retrieve is where any
// network work happens; Resolve itself never blocks on I/O.
func (r *Resolver) Resolve(ctx context.Context, name string) (aws.CredentialsProvider, error) {
	g := r.registry.Graph()
	if g == nil {
		return nil, fmt.Errorf("cannot resolve profile '%s': no profiles loaded", name)
	}
	return r.resolve(ctx, g, r.registry.Result(), name, nil)
}

// Invalidate evicts the cached provider for a profile or sso-session name
// along with every cached provider that was built on top of it.
func (r *Resolver) Invalidate(name string) {
	g := r.registry.Graph()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(g, name)
}

// Close drops every cached provider.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if c, ok := e.provider.(*aws.CredentialsCache); ok {
			c.Invalidate()
		}
	}
	r.entries = make(map[string]*entry)
	r.tokens = make(map[string]*ssocreds.SSOTokenProvider)
}

func (r *Resolver) evictLocked(g *profile.Graph, name string) {
	if e, ok := r.entries[name]; ok {
		delete(r.entries, name)
		if c, ok := e.provider.(*aws.CredentialsCache); ok {
			c.Invalidate()
		}
		r.opts.Logger.Logf(logging.Debug, "evicted cached provider for '%s'", name)
	}
	delete(r.tokens, name)
	if g == nil {
		return
	}
	for _, dep := range g.Dependents(name) {
		r.evictLocked(g, dep)
	}
}

func (r *Resolver) resolve(ctx context.Context, g *profile.Graph, res profile.ValidationResult, name string, chain []string) (aws.CredentialsProvider, error) {
	chain = append(chain, name)
	if err, ok := res.InvalidProfiles[name]; ok {
		return nil, fmt.Errorf("cannot resolve profile chain %s: %w", strings.Join(chain, "->"), err)
	}
	p, ok := res.ValidProfiles[name]
	if !ok {
		return nil, fmt.Errorf("cannot resolve profile chain %s: profile '%s' does not exist", strings.Join(chain, "->"), name)
	}

	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &entry{}
		r.entries[name] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.provider, e.err = r.build(ctx, g, res, p, chain)
	})
	if e.err != nil {
		return nil, e.err
	}
	return e.provider, nil
}

func (r *Resolver) build(ctx context.Context, g *profile.Graph, res profile.ValidationResult, p *profile.Profile, chain []string) (aws.CredentialsProvider, error) {
	id, err := profile.Classify(g, p)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve profile chain %s: %w", strings.Join(chain, "->"), err)
	}

	var inner aws.CredentialsProvider
	switch id := id.(type) {
	case profile.StaticCredentials:
		inner = credentials.NewStaticCredentialsProvider(id.AccessKeyID, id.SecretAccessKey, "")

	case profile.StaticSessionCredentials:
		inner = credentials.NewStaticCredentialsProvider(id.AccessKeyID, id.SecretAccessKey, id.SessionToken)

	case profile.AssumeRoleCredentials:
		inner, err = r.buildAssumeRole(ctx, g, res, p, id, chain)

	case profile.SsoSessionCredentials:
		inner, err = r.buildSessionSso(g, id)

	case profile.LegacySsoCredentials:
		inner, err = r.buildLegacySso(id)

	case profile.ProcessCredentials:
		inner = processcreds.NewProvider(id.Command)

	case profile.CredentialSourceCredentials:
		inner, err = r.externalSourceProvider(id.Source)
	}
	if err != nil {
		return nil, err
	}

	r.opts.Logger.Logf(logging.Debug, "built %s provider for profile '%s'", id.Kind(), p.Name)
	return aws.NewCredentialsCache(inner), nil
}

func (r *Resolver) buildAssumeRole(ctx context.Context, g *profile.Graph, res profile.ValidationResult, p *profile.Profile, id profile.AssumeRoleCredentials, chain []string) (aws.CredentialsProvider, error) {
	var source aws.CredentialsProvider
	var err error
	switch {
	case id.SourceProfile != "":
		source, err = r.resolve(ctx, g, res, id.SourceProfile, chain)
	case id.CredentialSource != "":
		source, err = r.externalSourceProvider(id.CredentialSource)
	default:
		return nil, fmt.Errorf("cannot resolve profile chain %s: profile '%s' has no credential source", strings.Join(chain, "->"), p.Name)
	}
	if err != nil {
		return nil, err
	}

	cfg := aws.Config{
		Region:      r.regionFor(p),
		Credentials: source,
		Logger:      r.opts.Logger,
	}

	serial := id.MfaSerial
	if serial == "" && id.RequiresMfa {
		for _, ancestor := range g.Chain(p.Name) {
			if s := ancestor.Get(profile.KeyMfaSerial); s != "" {
				serial = s
				break
			}
		}
	}

	return stscreds.NewAssumeRoleProvider(r.opts.STSClient(cfg), id.RoleArn, func(o *stscreds.AssumeRoleOptions) {
		if id.RoleSessionName != "" {
			o.RoleSessionName = id.RoleSessionName
		}
		if id.ExternalID != "" {
			o.ExternalID = aws.String(id.ExternalID)
		}
		if secs, convErr := strconv.Atoi(p.Get(profile.KeyDurationSeconds)); convErr == nil && secs > 0 {
			o.Duration = time.Duration(secs) * time.Second
		}
		if serial != "" {
			o.SerialNumber = aws.String(serial)
			o.TokenProvider = func() (string, error) {
				return r.opts.MfaTokenProvider(serial)
			}
		}
	}), nil
}

func (r *Resolver) buildSessionSso(g *profile.Graph, id profile.SsoSessionCredentials) (aws.CredentialsProvider, error) {
	session, ok := g.SsoSessions[id.SessionName]
	if !ok {
		return nil, fmt.Errorf("sso-session '%s' does not exist", id.SessionName)
	}

	token, err := r.tokenProviderFor(session)
	if err != nil {
		return nil, err
	}

	cfg := aws.Config{Region: session.Region, Logger: r.opts.Logger}
	return ssocreds.New(r.opts.SSOClient(cfg), id.AccountID, id.RoleName, session.StartURL, func(o *ssocreds.Options) {
		o.SSOTokenProvider = token
	}), nil
}

func (r *Resolver) buildLegacySso(id profile.LegacySsoCredentials) (aws.CredentialsProvider, error) {
	cachedPath, err := ssocreds.StandardCachedTokenFilepath(id.StartURL)
	if err != nil {
		return nil, fmt.Errorf("locating cached sso token for '%s': %w", id.StartURL, err)
	}

	region := id.Region
	if region == "" {
		region = r.opts.DefaultRegion
	}
	cfg := aws.Config{Region: region, Logger: r.opts.Logger}
	return ssocreds.New(r.opts.SSOClient(cfg), id.AccountID, id.RoleName, id.StartURL, func(o *ssocreds.Options) {
		o.CachedTokenFilepath = cachedPath
	}), nil
}

// tokenProviderFor returns the sso-session's bearer token provider, shared
// by every profile bound to that session within one load.
func (r *Resolver) tokenProviderFor(session *profile.SsoSession) (*ssocreds.SSOTokenProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tp, ok := r.tokens[session.Name]; ok {
		return tp, nil
	}

	cachedPath, err := ssocreds.StandardCachedTokenFilepath(session.Name)
	if err != nil {
		return nil, fmt.Errorf("locating cached sso token for session '%s': %w", session.Name, err)
	}
	cfg := aws.Config{Region: session.Region, Logger: r.opts.Logger}
	tp := ssocreds.NewSSOTokenProvider(r.opts.OIDCClient(cfg), cachedPath)
	r.tokens[session.Name] = tp
	return tp, nil
}

func (r *Resolver) externalSourceProvider(source string) (aws.CredentialsProvider, error) {
	switch source {
	case profile.CredentialSourceEnvironment:
		return environmentProvider{}, nil
	case profile.CredentialSourceEc2Metadata:
		return ec2rolecreds.New(), nil
	case profile.CredentialSourceEcs:
		uri := os.Getenv("AWS_CONTAINER_CREDENTIALS_FULL_URI")
		if rel := os.Getenv("AWS_CONTAINER_CREDENTIALS_RELATIVE_URI"); rel != "" {
			uri = ecsCredentialsEndpoint + rel
		}
		if uri == "" {
			return nil, fmt.Errorf("credential_source %s requires AWS_CONTAINER_CREDENTIALS_RELATIVE_URI or AWS_CONTAINER_CREDENTIALS_FULL_URI", source)
		}
		return endpointcreds.New(uri), nil
	}
	return nil, fmt.Errorf("unsupported credential_source '%s'", source)
}

func (r *Resolver) regionFor(p *profile.Profile) string {
	if region := p.Region(); region != "" {
		return region
	}
	return r.opts.DefaultRegion
}

// environmentProvider reads the standard AWS environment variables at
// retrieval time, so a later change to the environment is picked up.
type environmentProvider struct{}

func (environmentProvider) Retrieve(context.Context) (aws.Credentials, error) {
	key := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if key == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("credential_source Environment: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
	}
	return aws.Credentials{
		AccessKeyID:     key,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "EnvironmentProvider",
	}, nil
}
