package demokit

// Signal is the control value a callback returns to the run loop.
// SignalQuit and SignalRestart are the terminal sentinels; SignalRetry asks
// the caller to re-prompt the same site. The zero value advances normally.
type Signal int

const (
	// SignalContinue advances to the next site in the sequence.
	SignalContinue Signal = iota

	// SignalRetry re-prompts the same site.
	SignalRetry

	// SignalRestart rewinds the run loop to the first site.
	SignalRestart

	// SignalQuit ends the session.
	SignalQuit
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalContinue:
		return "continue"
	case SignalRetry:
		return "retry"
	case SignalRestart:
		return "restart"
	case SignalQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Invocation carries the response-derived arguments for one callback call.
type Invocation struct {
	// Site is the input-function identifier that triggered the dispatch.
	Site string

	// Response is the raw user response, always populated.
	Response string

	// Input is what the option matched on: the response for literal matches,
	// or the site identifier when the option holds a lock and must
	// discriminate sub-branches itself.
	Input string

	// Args are the default positional arguments bound at registration.
	Args []any

	// Kwargs are the default named arguments bound at registration.
	Kwargs map[string]any
}

// Callback is the behavior bound to an option key.
// Errors returned by a callback propagate to the run loop unchanged; the
// registry never catches or wraps them.
type Callback func(ctx Context, inv Invocation) (Signal, error)

// InputFunc reads one raw response for a designated site.
// It is declared via Registry.Designate and resolved by the run loop.
type InputFunc func(ctx Context) (string, error)

// Option binds a response key to a callback, descriptive text, and
// behavioral flags. Options are immutable after configuration except through
// the explicit setters, which must only be used before dispatch begins.
type Option struct {
	// Key is the response string this option matches, an input-function
	// identifier, or the Wildcard sentinel.
	Key string

	// Description is optional display text. Options without a description
	// are omitted from option listings.
	Description string

	// Args are merged into every invocation as default positional arguments.
	Args []any

	// Kwargs are merged into every invocation as default named arguments.
	Kwargs map[string]any

	// Lock marks this callback as the single discriminator for its site.
	// The matched option receives the site identifier as its input, and the
	// site accepts no further registrations.
	Lock bool

	// Retry instructs the caller to re-prompt the same site after invocation.
	Retry bool

	// Newline instructs the caller to emit a blank line before invocation.
	// The registry surfaces the flag; the run loop enacts it.
	Newline bool

	callback Callback
}

// NewOption constructs an option for key with the given callback.
// Returns a *ValidationError if key is empty or callback is nil.
func NewOption(key string, callback Callback, opts ...RegisterOption) (*Option, error) {
	if key == "" {
		return nil, &ValidationError{Field: "key", Err: ErrEmptyKey}
	}
	if callback == nil {
		return nil, &ValidationError{Field: "callback", Value: key, Err: ErrNilCallback}
	}

	o := &Option{
		Key:      key,
		callback: callback,
	}
	cfg := applyRegisterOptions(opts)
	o.Description = cfg.description
	o.Lock = cfg.lock
	o.Retry = cfg.retry
	o.Newline = cfg.newline
	if len(cfg.args) > 0 {
		o.Args = append([]any(nil), cfg.args...)
	}
	if len(cfg.kwargs) > 0 {
		o.Kwargs = make(map[string]any, len(cfg.kwargs))
		for k, v := range cfg.kwargs {
			o.Kwargs[k] = v
		}
	}
	return o, nil
}

// Invoke executes the callback with the site's context and response-derived
// arguments. The input is the raw response for literal matches, or the site
// identifier when Lock is set. A Retry option forces SignalRetry after a
// successful return regardless of what the callback returned; callback
// errors propagate untouched.
func (o *Option) Invoke(ctx Context, site, response string) (Signal, error) {
	input := response
	if o.Lock {
		input = site
	}

	inv := Invocation{
		Site:     site,
		Response: response,
		Input:    input,
	}
	if len(o.Args) > 0 {
		inv.Args = append([]any(nil), o.Args...)
	}
	if len(o.Kwargs) > 0 {
		inv.Kwargs = make(map[string]any, len(o.Kwargs))
		for k, v := range o.Kwargs {
			inv.Kwargs[k] = v
		}
	}

	sig, err := o.callback(ctx, inv)
	if err != nil {
		return sig, err
	}
	if o.Retry {
		return SignalRetry, nil
	}
	return sig, nil
}

// Copy returns a structurally identical, independent option. The callback
// reference is shared; flags, arguments, and text are duplicated so that
// registry copies never alias mutable state.
func (o *Option) Copy() *Option {
	clone := &Option{
		Key:         o.Key,
		Description: o.Description,
		Lock:        o.Lock,
		Retry:       o.Retry,
		Newline:     o.Newline,
		callback:    o.callback,
	}
	if len(o.Args) > 0 {
		clone.Args = append([]any(nil), o.Args...)
	}
	if len(o.Kwargs) > 0 {
		clone.Kwargs = make(map[string]any, len(o.Kwargs))
		for k, v := range o.Kwargs {
			clone.Kwargs[k] = v
		}
	}
	return clone
}

// SetDescription replaces the display text. Only call before dispatch begins.
func (o *Option) SetDescription(desc string) {
	o.Description = desc
}

// SetArgs replaces the default positional arguments. Only call before
// dispatch begins.
func (o *Option) SetArgs(args ...any) {
	o.Args = append([]any(nil), args...)
}

// SetKwargs replaces the default named arguments. Only call before dispatch
// begins.
func (o *Option) SetKwargs(kwargs map[string]any) {
	if kwargs == nil {
		o.Kwargs = nil
		return
	}
	o.Kwargs = make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		o.Kwargs[k] = v
	}
}
