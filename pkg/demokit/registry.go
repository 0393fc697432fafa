package demokit

import (
	"sort"
	"strings"
	"sync"
)

// Wildcard is the sentinel key for a site's default option. It matches any
// response that no literal key claims. A literal match always takes
// precedence over the wildcard.
const Wildcard = "*"

// optionSet is one site's keyed option collection.
// Registration order is preserved so option listings print in declaration
// order; overriding a key keeps its original position.
type optionSet struct {
	options map[string]*Option
	order   []string
	lockKey string
}

func newOptionSet() *optionSet {
	return &optionSet{
		options: make(map[string]*Option),
	}
}

func (s *optionSet) locked() bool {
	return s.lockKey != ""
}

func (s *optionSet) copy() *optionSet {
	clone := &optionSet{
		options: make(map[string]*Option, len(s.options)),
		order:   append([]string(nil), s.order...),
		lockKey: s.lockKey,
	}
	for key, opt := range s.options {
		clone.options[key] = opt.Copy()
	}
	return clone
}

// Registry is the central dispatch table for a demo: a keyed collection of
// options grouped by input-function identifier (site), plus the table of
// designated input functions.
//
// Registry is NOT safe for concurrent registration. Build the full option
// surface from a single goroutine (normally at demo construction), then
// dispatch freely; reads are mutex-guarded so concurrent Call/Lookup from
// the run loop and introspection helpers never race.
//
// Example:
//
//	reg := demokit.NewRegistry()
//	err := reg.Register("main", "r", restart, demokit.WithDescription("Restart."))
//	err = reg.Register("main", "q", quit, demokit.WithDescription("Quit."))
//	sig, err := reg.Call(ctx, "main", "r")
type Registry struct {
	mu     sync.RWMutex
	sites  map[string]*optionSet
	inputs map[string]InputFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sites:  make(map[string]*optionSet),
		inputs: make(map[string]InputFunc),
	}
}

// Register constructs an option bound to site and key and inserts it.
//
// Fails with:
//   - *ValidationError if site or key is malformed or callback is nil
//   - *DuplicateKeyError if key already exists for the site (unless
//     WithOverwrite() is passed)
//   - *RegistrationError if the site is locked
//
// Registering an option built with WithLock() transitions the site to
// locked; every later registration targeting that site fails.
func (r *Registry) Register(site, key string, callback Callback, opts ...RegisterOption) error {
	if err := validateSite(site); err != nil {
		return err
	}
	opt, err := NewOption(key, callback, opts...)
	if err != nil {
		return err
	}
	cfg := applyRegisterOptions(opts)
	return r.insert(site, opt, cfg.overwrite)
}

// Insert adds a pre-constructed option to the site's set. It enforces the
// same uniqueness and lock invariants as Register. Advanced callers that
// build Option values directly use this; Register is the normal path.
func (r *Registry) Insert(site string, opt *Option, opts ...RegisterOption) error {
	if err := validateSite(site); err != nil {
		return err
	}
	if opt == nil || opt.callback == nil {
		return &ValidationError{Field: "callback", Value: site, Err: ErrNilCallback}
	}
	if opt.Key == "" {
		return &ValidationError{Field: "key", Err: ErrEmptyKey}
	}
	cfg := applyRegisterOptions(opts)
	return r.insert(site, opt, cfg.overwrite)
}

func (r *Registry) insert(site string, opt *Option, overwrite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sites[site]
	if !ok {
		set = newOptionSet()
		r.sites[site] = set
	}

	if set.locked() {
		return &RegistrationError{Site: site, Key: opt.Key, LockKey: set.lockKey}
	}

	if _, exists := set.options[opt.Key]; exists {
		if !overwrite {
			return &DuplicateKeyError{Site: site, Key: opt.Key}
		}
		// Overridden keys keep their original position in the listing.
		set.options[opt.Key] = opt
	} else {
		set.options[opt.Key] = opt
		set.order = append(set.order, opt.Key)
	}

	if opt.Lock {
		set.lockKey = opt.Key
	}
	return nil
}

// Designate declares fn as the input function for site, so the run loop can
// resolve how to read a response at that prompt. The function is stored
// unchanged. Fails with *ValidationError on a malformed identifier or nil
// function.
func (r *Registry) Designate(site string, fn InputFunc) error {
	if err := validateSite(site); err != nil {
		return err
	}
	if fn == nil {
		return &ValidationError{Field: "callback", Value: site, Err: ErrNilCallback}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs[site] = fn
	return nil
}

// InputFor returns the input function designated for site.
// Fails with ErrNoInput if none was designated.
func (r *Registry) InputFor(site string) (InputFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.inputs[site]
	if !ok {
		return nil, ErrNoInput
	}
	return fn, nil
}

// HasOptions reports whether any options exist for site.
func (r *Registry) HasOptions(site string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sites[site]
	return ok && len(set.options) > 0
}

// Contains reports whether an option with key exists for site.
// It is the non-failing convenience form of Lookup.
func (r *Registry) Contains(site, key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sites[site]
	if !ok {
		return false
	}
	_, exists := set.options[key]
	return exists
}

// Lookup returns the option registered under key for site. Matching is
// exact; there is no prefix or fuzzy matching. Fails with
// *UnknownOptionError if the site is unconfigured or the key is absent.
func (r *Registry) Lookup(site, key string) (*Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sites[site]
	if !ok {
		return nil, &UnknownOptionError{Site: site, Response: key, Err: ErrNoOptions}
	}
	opt, exists := set.options[key]
	if !exists {
		return nil, &UnknownOptionError{Site: site, Response: key, Err: ErrUnknownOption}
	}
	return opt, nil
}

// Resolve matches response against the site's registered keys and returns
// the option that would handle it, without invoking anything.
//
// Precedence: a literal key match always wins; on a locked site the lock
// option claims everything else; otherwise a registered Wildcard option is
// the fallback. With no match at all, fails with *UnknownOptionError.
func (r *Registry) Resolve(site, response string) (*Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sites[site]
	if !ok || len(set.options) == 0 {
		return nil, &UnknownOptionError{Site: site, Response: response, Err: ErrNoOptions}
	}
	if opt, exists := set.options[response]; exists {
		return opt, nil
	}
	if set.locked() {
		return set.options[set.lockKey], nil
	}
	if opt, exists := set.options[Wildcard]; exists {
		return opt, nil
	}
	return nil, &UnknownOptionError{Site: site, Response: response, Err: ErrUnknownOption}
}

// Call resolves the site's option set, matches response, and invokes the
// matched option. It returns the callback's signal; an option registered
// with WithRetry() yields SignalRetry unconditionally. Callback errors
// propagate unchanged.
func (r *Registry) Call(ctx Context, site, response string) (Signal, error) {
	opt, err := r.Resolve(site, response)
	if err != nil {
		return SignalContinue, err
	}
	return opt.Invoke(ctx, site, response)
}

// Options returns the site's options in registration order.
// Returns nil for an unconfigured site.
func (r *Registry) Options(site string) []*Option {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sites[site]
	if !ok {
		return nil
	}
	out := make([]*Option, 0, len(set.order))
	for _, key := range set.order {
		out = append(out, set.options[key])
	}
	return out
}

// Sites returns all configured site identifiers sorted alphabetically.
func (r *Registry) Sites() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sites := make([]string, 0, len(r.sites))
	for site := range r.sites {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// Locked reports whether the site holds a lock-flagged option.
func (r *Registry) Locked(site string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sites[site]
	return ok && set.locked()
}

// Copy returns a deep, independent clone of the registry: every site, every
// option, and the input-function table. A derived demo variant starts from
// a copy of its parent's full option surface and layers overrides on top
// (with WithOverwrite()) without mutating the base. Non-overridden keys
// retain the base callback, flags, and description unchanged.
func (r *Registry) Copy() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewRegistry()
	for site, set := range r.sites {
		clone.sites[site] = set.copy()
	}
	for site, fn := range r.inputs {
		clone.inputs[site] = fn
	}
	return clone
}

// validateSite rejects empty or whitespace-only site identifiers.
func validateSite(site string) error {
	if strings.TrimSpace(site) == "" {
		return &ValidationError{Field: "site", Value: site, Err: ErrInvalidSite}
	}
	return nil
}
