package profile

import (
	"maps"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Snapshot is the valid state retained from the previous load. Only the
// Differ reads it, and it is replaced wholesale after every diff.
type Snapshot struct {
	Profiles    map[string]*Profile
	SsoSessions map[string]*SsoSession
}

// ChangeEvent lists what a load changed relative to the previous one.
// Name slices are sorted. Delivered once per load; not retained.
type ChangeEvent struct {
	ProfilesAdded    []string
	ProfilesModified []string
	ProfilesRemoved  []string

	SsoSessionsAdded    []string
	SsoSessionsModified []string
	SsoSessionsRemoved  []string
}

// Empty reports whether the load changed nothing.
func (e ChangeEvent) Empty() bool {
	return len(e.ProfilesAdded) == 0 && len(e.ProfilesModified) == 0 && len(e.ProfilesRemoved) == 0 &&
		len(e.SsoSessionsAdded) == 0 && len(e.SsoSessionsModified) == 0 && len(e.SsoSessionsRemoved) == 0
}

// Differ compares successive validated loads. It is the only stateful piece
// of the pipeline; diffing the same load twice yields an empty event the
// second time because the snapshot already matches.
type Differ struct {
	prev Snapshot
}

// NewDiffer returns a Differ with an empty snapshot, so the first load
// reports every valid entry as added.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff computes the change sets between the retained snapshot and res, then
// replaces the snapshot. A profile is modified when its own properties
// changed, or when any profile in its resolved ancestor chain changed, or
// when the sso-session it (or an ancestor) references changed.
func (d *Differ) Diff(g *Graph, res ValidationResult) ChangeEvent {
	profAdded := mapset.NewThreadUnsafeSet[string]()
	profModified := mapset.NewThreadUnsafeSet[string]()
	sessAdded := mapset.NewThreadUnsafeSet[string]()
	sessModified := mapset.NewThreadUnsafeSet[string]()

	// Scratch copies of the previous maps; entries are consumed as they
	// are matched and whatever is left over was removed.
	prevProfiles := maps.Clone(d.prev.Profiles)
	prevSessions := maps.Clone(d.prev.SsoSessions)

	for name, s := range res.ValidSsoSessions {
		old, ok := prevSessions[name]
		if !ok {
			sessAdded.Add(name)
			continue
		}
		delete(prevSessions, name)
		if !maps.Equal(old.Properties, s.Properties) {
			sessModified.Add(name)
		}
	}

	directModified := mapset.NewThreadUnsafeSet[string]()
	for name, p := range res.ValidProfiles {
		old, ok := prevProfiles[name]
		if !ok {
			profAdded.Add(name)
			continue
		}
		delete(prevProfiles, name)
		if !maps.Equal(old.Properties, p.Properties) {
			directModified.Add(name)
			profModified.Add(name)
		}
	}

	// Propagation: walk each profile's full resolved chain against the
	// directly-modified sets. Checking the whole chain (not one hop) keeps
	// the pass transitive no matter what order profiles come out of the map.
	for name := range res.ValidProfiles {
		if profAdded.Contains(name) || profModified.Contains(name) {
			continue
		}
		for _, ancestor := range g.Chain(name) {
			if ancestor.Name != name && directModified.Contains(ancestor.Name) {
				profModified.Add(name)
				break
			}
			if ancestor.SsoSessionName != "" && sessModified.Contains(ancestor.SsoSessionName) {
				profModified.Add(name)
				break
			}
		}
	}

	event := ChangeEvent{
		ProfilesAdded:       sortedSlice(profAdded),
		ProfilesModified:    sortedSlice(profModified),
		ProfilesRemoved:     sortedKeys(prevProfiles),
		SsoSessionsAdded:    sortedSlice(sessAdded),
		SsoSessionsModified: sortedSlice(sessModified),
		SsoSessionsRemoved:  sortedKeys(prevSessions),
	}

	d.prev = Snapshot{
		Profiles:    res.ValidProfiles,
		SsoSessions: res.ValidSsoSessions,
	}
	return event
}

func sortedSlice(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
