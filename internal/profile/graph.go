package profile

import (
	"maps"
	"sort"
	"strings"
)

// Profile is one named profile from a single load. It is immutable for the
// lifetime of that load; the next load supersedes it wholesale.
type Profile struct {
	Name       string
	Properties map[string]string

	// References extracted from the well-known keys. Extraction is literal:
	// a reference to a name that does not exist in this load is kept as-is
	// so the Validator can report it precisely.
	SourceProfile    string
	CredentialSource string
	SsoSessionName   string
}

// Get returns a property value, "" if absent.
func (p *Profile) Get(key string) string {
	return p.Properties[key]
}

// Has reports whether the profile declares the given property.
func (p *Profile) Has(key string) bool {
	_, ok := p.Properties[key]
	return ok
}

// Region returns the profile's own region, "" if it declares none.
func (p *Profile) Region() string {
	return p.Get(KeyRegion)
}

// SsoSession is one named sso-session record from a single load.
type SsoSession struct {
	Name       string
	Properties map[string]string

	StartURL string
	Region   string
	Scopes   []string
}

// Get returns a property value, "" if absent.
func (s *SsoSession) Get(key string) string {
	return s.Properties[key]
}

// Graph holds every profile and sso-session of one load plus the derived
// reference edges. Built once per load, then read-only.
type Graph struct {
	Profiles    map[string]*Profile
	SsoSessions map[string]*SsoSession

	// dependents is the reverse edge index: for a profile or session name,
	// the profiles that reference it directly (via source_profile or
	// sso_session). Used by the differencer propagation and by provider
	// cache invalidation.
	dependents map[string][]string
}

// BuildGraph turns raw records into an immutable reference graph.
// No validation happens here; dangling references survive extraction so the
// Validator can turn them into precise per-name errors.
func BuildGraph(profiles, sessions Records) *Graph {
	g := &Graph{
		Profiles:    make(map[string]*Profile, len(profiles)),
		SsoSessions: make(map[string]*SsoSession, len(sessions)),
		dependents:  make(map[string][]string),
	}

	for name, props := range sessions {
		s := &SsoSession{
			Name:       name,
			Properties: maps.Clone(props),
			StartURL:   props[KeySsoStartURL],
			Region:     props[KeySsoRegion],
		}
		if raw := props[KeySsoScopes]; raw != "" {
			for _, scope := range strings.Split(raw, ",") {
				if scope = strings.TrimSpace(scope); scope != "" {
					s.Scopes = append(s.Scopes, scope)
				}
			}
		}
		g.SsoSessions[name] = s
	}

	for name, props := range profiles {
		g.Profiles[name] = &Profile{
			Name:             name,
			Properties:       maps.Clone(props),
			SourceProfile:    props[KeySourceProfile],
			CredentialSource: props[KeyCredentialSource],
			SsoSessionName:   props[KeySsoSession],
		}
	}

	for name, p := range g.Profiles {
		if p.SourceProfile != "" {
			g.dependents[p.SourceProfile] = append(g.dependents[p.SourceProfile], name)
		}
		if p.SsoSessionName != "" {
			g.dependents[p.SsoSessionName] = append(g.dependents[p.SsoSessionName], name)
		}
	}
	for _, deps := range g.dependents {
		sort.Strings(deps)
	}

	return g
}

// Dependents returns the profiles directly referencing the given profile or
// sso-session name, sorted. The returned slice must not be mutated.
func (g *Graph) Dependents(name string) []string {
	return g.dependents[name]
}

// Chain returns a profile's resolved ancestor chain, starting with the
// profile itself and following source_profile links. It is only meaningful
// for profiles the Validator accepted; as a guard it stops on a repeated or
// dangling name instead of looping.
func (g *Graph) Chain(name string) []*Profile {
	var chain []*Profile
	seen := make(map[string]bool)
	for cur := name; cur != "" && !seen[cur]; {
		p, ok := g.Profiles[cur]
		if !ok {
			break
		}
		seen[cur] = true
		chain = append(chain, p)
		cur = p.SourceProfile
	}
	return chain
}

// ProfileNames returns all profile names in sorted order, giving every walk
// over the graph a deterministic order regardless of map iteration.
func (g *Graph) ProfileNames() []string {
	names := make([]string, 0, len(g.Profiles))
	for name := range g.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SsoSessionNames returns all sso-session names in sorted order.
func (g *Graph) SsoSessionNames() []string {
	names := make([]string, 0, len(g.SsoSessions))
	for name := range g.SsoSessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
