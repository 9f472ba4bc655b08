package profile

import (
	"sync"

	"github.com/aws/smithy-go/logging"
)

// Registry owns the load pipeline: build graph, validate, diff against the
// previous load, notify listeners. Loads are pushed in by the caller (the
// engine does no file watching itself) and are serialized, so every diff
// compares against a single consistent prior snapshot.
type Registry struct {
	// loadMu serializes whole loads, including listener notification, so
	// events are observed in load order.
	loadMu sync.Mutex

	// stateMu guards the published state; it is never held while calling
	// out to listeners, which are free to read the Registry back.
	stateMu   sync.Mutex
	differ    *Differ
	graph     *Graph
	lastRes   ValidationResult
	listeners []func(ChangeEvent)

	logger logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the debug logger. Default is a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithListener registers a change listener at construction time.
func WithListener(fn func(ChangeEvent)) Option {
	return func(r *Registry) { r.listeners = append(r.listeners, fn) }
}

// NewRegistry returns a Registry with an empty snapshot.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		differ: NewDiffer(),
		logger: logging.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers a listener receiving one ChangeEvent per load.
// Listeners run synchronously on the loading goroutine, after the snapshot
// has been replaced.
func (r *Registry) Subscribe(fn func(ChangeEvent)) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Load runs one full pipeline pass over freshly parsed records and returns
// the validation verdicts. Concurrent callers are serialized; a load runs to
// completion before its result replaces the snapshot.
func (r *Registry) Load(profiles, sessions Records) ValidationResult {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	g := BuildGraph(profiles, sessions)
	res := Validate(g)
	event := r.differ.Diff(g, res)

	r.stateMu.Lock()
	r.graph = g
	r.lastRes = res
	listeners := make([]func(ChangeEvent), len(r.listeners))
	copy(listeners, r.listeners)
	r.stateMu.Unlock()

	r.logger.Logf(logging.Debug,
		"profile load: %d valid / %d invalid profiles, %d valid / %d invalid sso-sessions",
		len(res.ValidProfiles), len(res.InvalidProfiles),
		len(res.ValidSsoSessions), len(res.InvalidSsoSessions))
	for name, err := range res.InvalidProfiles {
		r.logger.Logf(logging.Warn, "profile '%s' ignored: %v", name, err)
	}
	for name, err := range res.InvalidSsoSessions {
		r.logger.Logf(logging.Warn, "sso-session '%s' ignored: %v", name, err)
	}

	if !event.Empty() {
		r.logger.Logf(logging.Debug,
			"profile changes: +%d ~%d -%d profiles, +%d ~%d -%d sso-sessions",
			len(event.ProfilesAdded), len(event.ProfilesModified), len(event.ProfilesRemoved),
			len(event.SsoSessionsAdded), len(event.SsoSessionsModified), len(event.SsoSessionsRemoved))
	}
	for _, fn := range listeners {
		fn(event)
	}

	return res
}

// Graph returns the graph of the most recent load, nil before the first one.
func (r *Registry) Graph() *Graph {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.graph
}

// Result returns the most recent load's validation verdicts.
func (r *Registry) Result() ValidationResult {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.lastRes
}
