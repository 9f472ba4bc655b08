package profile

import "slices"

// ValidationResult partitions one load into usable and broken entries.
// A name appears in exactly one of the two maps for its category.
type ValidationResult struct {
	ValidProfiles      map[string]*Profile
	InvalidProfiles    map[string]*ProfileError
	ValidSsoSessions   map[string]*SsoSession
	InvalidSsoSessions map[string]*ProfileError
}

// Invalid reports whether the load contains any broken profile or session.
func (r ValidationResult) Invalid() bool {
	return len(r.InvalidProfiles) > 0 || len(r.InvalidSsoSessions) > 0
}

// Validate classifies every profile and sso-session of a load as valid or
// invalid. It never fails as a whole: one misconfigured profile produces an
// entry in the invalid map and leaves every independent profile untouched.
// Profiles depending on a broken ancestor share the ancestor's error value.
func Validate(g *Graph) ValidationResult {
	v := &validator{
		g:        g,
		profErrs: make(map[string]*ProfileError),
		profOK:   make(map[string]bool),
		sessErrs: make(map[string]*ProfileError),
	}

	for _, name := range g.SsoSessionNames() {
		v.validateSession(g.SsoSessions[name])
	}
	for _, name := range g.ProfileNames() {
		v.validateProfile(name)
	}

	res := ValidationResult{
		ValidProfiles:      make(map[string]*Profile),
		InvalidProfiles:    make(map[string]*ProfileError),
		ValidSsoSessions:   make(map[string]*SsoSession),
		InvalidSsoSessions: make(map[string]*ProfileError),
	}
	for name, p := range g.Profiles {
		if err, ok := v.profErrs[name]; ok {
			res.InvalidProfiles[name] = err
		} else {
			res.ValidProfiles[name] = p
		}
	}
	for name, s := range g.SsoSessions {
		if err, ok := v.sessErrs[name]; ok {
			res.InvalidSsoSessions[name] = err
		} else {
			res.ValidSsoSessions[name] = s
		}
	}
	return res
}

type validator struct {
	g        *Graph
	profErrs map[string]*ProfileError
	profOK   map[string]bool
	sessErrs map[string]*ProfileError
}

func (v *validator) validateSession(s *SsoSession) {
	if _, ok := v.sessErrs[s.Name]; ok {
		return
	}
	for _, key := range []string{KeySsoStartURL, KeySsoRegion} {
		if s.Get(key) == "" {
			v.sessErrs[s.Name] = &ProfileError{Code: ErrCodeMissingProperty, Name: s.Name, Key: key}
			return
		}
	}
}

// validateProfile walks the source_profile chain iteratively with an
// explicit visited list, so cycle paths come out of the list rather than
// call-stack unwinding and stack depth stays bounded by the chain length.
func (v *validator) validateProfile(name string) *ProfileError {
	if err, ok := v.profErrs[name]; ok {
		return err
	}
	if v.profOK[name] {
		return nil
	}

	var visited []string
	cur := name
	for {
		// An ancestor with a known verdict ends the walk; its error (if
		// any) is reused verbatim by everything that led here.
		if len(visited) > 0 {
			if err, ok := v.profErrs[cur]; ok {
				return v.fail(visited, err)
			}
			if v.profOK[cur] {
				break
			}
		}

		if idx := slices.Index(visited, cur); idx >= 0 {
			err := &ProfileError{
				Code: ErrCodeCycle,
				Name: cur,
				Path: append(slices.Clone(visited), cur),
			}
			return v.fail(visited, err)
		}
		visited = append(visited, cur)

		p, ok := v.g.Profiles[cur]
		if !ok {
			err := &ProfileError{
				Code:   ErrCodeSourceProfileNotFound,
				Name:   visited[len(visited)-2],
				Target: cur,
			}
			return v.fail(visited[:len(visited)-1], err)
		}

		if err := v.checkLocal(p); err != nil {
			return v.fail(visited, err)
		}

		if p.SourceProfile == "" {
			break
		}
		if p.SourceProfile == cur {
			err := &ProfileError{
				Code: ErrCodeSelfReference,
				Name: cur,
				Path: []string{cur, cur},
			}
			return v.fail(visited, err)
		}
		cur = p.SourceProfile
	}

	for _, n := range visited {
		v.profOK[n] = true
	}
	return nil
}

// checkLocal applies the single-profile rules that need no chain context.
func (v *validator) checkLocal(p *Profile) *ProfileError {
	if p.SourceProfile != "" && p.CredentialSource != "" {
		return &ProfileError{Code: ErrCodeDuplicateSource, Name: p.Name}
	}
	if p.CredentialSource != "" {
		switch p.CredentialSource {
		case CredentialSourceEnvironment, CredentialSourceEc2Metadata, CredentialSourceEcs:
		default:
			return &ProfileError{Code: ErrCodeInvalidCredSource, Name: p.Name, Target: p.CredentialSource}
		}
	}
	if p.SsoSessionName != "" {
		s, ok := v.g.SsoSessions[p.SsoSessionName]
		if !ok {
			return &ProfileError{Code: ErrCodeSsoSessionNotFound, Name: p.Name, Target: p.SsoSessionName}
		}
		v.validateSession(s)
		if err, bad := v.sessErrs[s.Name]; bad {
			return err
		}
	}
	// An assume-role profile must name where its base credentials come
	// from, unless an sso-session supplies them.
	if p.Has(KeyRoleArn) && p.SourceProfile == "" && p.CredentialSource == "" && p.SsoSessionName == "" {
		return &ProfileError{Code: ErrCodeMissingSource, Name: p.Name}
	}
	return nil
}

// fail records err for every profile on the walked path and returns it.
func (v *validator) fail(path []string, err *ProfileError) *ProfileError {
	for _, n := range path {
		v.profErrs[n] = err
	}
	return err
}
