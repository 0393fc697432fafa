package demokit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signalCallback(sig Signal) Callback {
	return func(ctx Context, inv Invocation) (Signal, error) {
		return sig, nil
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register("main", "r", signalCallback(SignalRestart),
		WithDescription("Restart."))
	require.NoError(t, err)

	assert.True(t, reg.Contains("main", "r"))
	assert.True(t, reg.HasOptions("main"))
	assert.False(t, reg.Contains("main", "q"))
}

func TestRegistryRegister_InvalidSite(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register("  ", "r", signalCallback(SignalRestart))

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "site", valErr.Field)
	assert.ErrorIs(t, err, ErrInvalidSite)
}

// TestRegistryRegister_DistinctKeys verifies that registrations under
// distinct keys at one site are independently dispatchable.
func TestRegistryRegister_DistinctKeys(t *testing.T) {
	reg := NewRegistry()
	ctx := NewContext(context.Background())

	require.NoError(t, reg.Register("main", "r", signalCallback(SignalRestart)))
	require.NoError(t, reg.Register("main", "q", signalCallback(SignalQuit)))

	sig, err := reg.Call(ctx, "main", "r")
	require.NoError(t, err)
	assert.Equal(t, SignalRestart, sig)

	sig, err = reg.Call(ctx, "main", "q")
	require.NoError(t, err)
	assert.Equal(t, SignalQuit, sig)
}

func TestRegistryRegister_DuplicateKey(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("main", "r", signalCallback(SignalRestart)))
	err := reg.Register("main", "r", signalCallback(SignalQuit))

	var dupErr *DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "main", dupErr.Site)
	assert.Equal(t, "r", dupErr.Key)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

// TestRegistryRegister_SameKeyDifferentSites verifies that key spaces are
// per-site: "r" can mean different things at different prompts.
func TestRegistryRegister_SameKeyDifferentSites(t *testing.T) {
	reg := NewRegistry()
	ctx := NewContext(context.Background())

	require.NoError(t, reg.Register("main", "r", signalCallback(SignalRestart)))
	require.NoError(t, reg.Register("other", "r", signalCallback(SignalQuit)))

	sig, err := reg.Call(ctx, "main", "r")
	require.NoError(t, err)
	assert.Equal(t, SignalRestart, sig)

	sig, err = reg.Call(ctx, "other", "r")
	require.NoError(t, err)
	assert.Equal(t, SignalQuit, sig)
}

func TestRegistryRegister_Overwrite(t *testing.T) {
	reg := NewRegistry()
	ctx := NewContext(context.Background())

	require.NoError(t, reg.Register("main", "q", signalCallback(SignalQuit)))
	require.NoError(t, reg.Register("main", "q", signalCallback(SignalRestart),
		WithOverwrite()))

	sig, err := reg.Call(ctx, "main", "q")
	require.NoError(t, err)
	assert.Equal(t, SignalRestart, sig)
}

func TestRegistryLock(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("sandbox", "shell", signalCallback(SignalContinue),
		WithLock()))
	assert.True(t, reg.Locked("sandbox"))

	err := reg.Register("sandbox", "x", signalCallback(SignalContinue))

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "sandbox", regErr.Site)
	assert.Equal(t, "x", regErr.Key)
	assert.Equal(t, "shell", regErr.LockKey)
	assert.ErrorIs(t, err, ErrSiteLocked)
}

// TestRegistryLock_ClaimsEverything verifies that a locked site's single
// option handles any response.
func TestRegistryLock_ClaimsEverything(t *testing.T) {
	reg := NewRegistry()
	ctx := NewContext(context.Background())

	var inputs []string
	require.NoError(t, reg.Register("sandbox", "shell",
		func(ctx Context, inv Invocation) (Signal, error) {
			inputs = append(inputs, inv.Input, inv.Response)
			return SignalContinue, nil
		}, WithLock()))

	_, err := reg.Call(ctx, "sandbox", "1 + 1")
	require.NoError(t, err)
	_, err = reg.Call(ctx, "sandbox", "shell")
	require.NoError(t, err)

	// The lock option always receives the site as its input.
	assert.Equal(t, []string{"sandbox", "1 + 1", "sandbox", "shell"}, inputs)
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("main", "r", signalCallback(SignalRestart)))

	opt, err := reg.Lookup("main", "r")
	require.NoError(t, err)
	assert.Equal(t, "r", opt.Key)

	_, err = reg.Lookup("main", "missing")
	var unkErr *UnknownOptionError
	require.ErrorAs(t, err, &unkErr)
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, err = reg.Lookup("nowhere", "r")
	require.ErrorAs(t, err, &unkErr)
	assert.ErrorIs(t, err, ErrNoOptions)
}

// TestRegistryLookup_ExactMatch verifies that matching is exact: no prefix
// or fuzzy matching of keys.
func TestRegistryLookup_ExactMatch(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("main", "restart", signalCallback(SignalRestart)))

	_, err := reg.Lookup("main", "r")
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, err = reg.Lookup("main", "restart ")
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestRegistryResolve_Precedence(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("main", "r", signalCallback(SignalRestart)))
	require.NoError(t, reg.Register("main", Wildcard, signalCallback(SignalContinue)))

	// Literal beats wildcard.
	opt, err := reg.Resolve("main", "r")
	require.NoError(t, err)
	assert.Equal(t, "r", opt.Key)

	// Wildcard catches the rest.
	opt, err = reg.Resolve("main", "zzz")
	require.NoError(t, err)
	assert.Equal(t, Wildcard, opt.Key)
}

func TestRegistryResolve_NoMatch(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("main", "r", signalCallback(SignalRestart)))

	_, err := reg.Resolve("main", "zzz")

	var unkErr *UnknownOptionError
	require.ErrorAs(t, err, &unkErr)
	assert.Equal(t, "main", unkErr.Site)
	assert.Equal(t, "zzz", unkErr.Response)
}

func TestRegistryDesignate(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Designate("main", func(ctx Context) (string, error) {
		return "r", nil
	}))

	fn, err := reg.InputFor("main")
	require.NoError(t, err)
	response, err := fn(NewContext(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, "r", response)

	_, err = reg.InputFor("other")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestRegistryOptions_Order(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("main", "h", signalCallback(SignalContinue)))
	require.NoError(t, reg.Register("main", "o", signalCallback(SignalContinue)))
	require.NoError(t, reg.Register("main", "q", signalCallback(SignalQuit)))
	// Overriding keeps the original position.
	require.NoError(t, reg.Register("main", "o", signalCallback(SignalContinue),
		WithOverwrite()))

	var keys []string
	for _, opt := range reg.Options("main") {
		keys = append(keys, opt.Key)
	}
	assert.Equal(t, []string{"h", "o", "q"}, keys)

	assert.Nil(t, reg.Options("nowhere"))
}

func TestRegistrySites(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("setup", "q", signalCallback(SignalQuit)))
	require.NoError(t, reg.Register("commands", "q", signalCallback(SignalQuit)))

	assert.Equal(t, []string{"commands", "setup"}, reg.Sites())
}

// TestRegistryCopy_Isolation verifies that a copy and its base evolve
// independently: registrations on one never show up on the other.
func TestRegistryCopy_Isolation(t *testing.T) {
	base := NewRegistry()
	require.NoError(t, base.Register("main", "r", signalCallback(SignalRestart)))

	derived := base.Copy()
	require.NoError(t, derived.Register("main", "x", signalCallback(SignalContinue)))

	assert.True(t, derived.Contains("main", "x"))
	assert.False(t, base.Contains("main", "x"))
}

// TestRegistryCopy_Override verifies per-key override on a derived copy:
// the override requires WithOverwrite, applies only to the copy, and
// non-overridden keys keep the base behavior.
func TestRegistryCopy_Override(t *testing.T) {
	ctx := NewContext(context.Background())

	base := NewRegistry()
	require.NoError(t, base.Register("main", "q", signalCallback(SignalQuit)))
	require.NoError(t, base.Register("main", "r", signalCallback(SignalRestart)))

	derived := base.Copy()

	// Redefining an inherited key without consent fails.
	err := derived.Register("main", "q", signalCallback(SignalContinue))
	var dupErr *DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)

	require.NoError(t, derived.Register("main", "q", signalCallback(SignalContinue),
		WithOverwrite()))

	sig, err := derived.Call(ctx, "main", "q")
	require.NoError(t, err)
	assert.Equal(t, SignalContinue, sig)

	// Non-overridden keys retain the base behavior.
	sig, err = derived.Call(ctx, "main", "r")
	require.NoError(t, err)
	assert.Equal(t, SignalRestart, sig)

	// The base is untouched.
	sig, err = base.Call(ctx, "main", "q")
	require.NoError(t, err)
	assert.Equal(t, SignalQuit, sig)
}

func TestRegistryCopy_LockPreserved(t *testing.T) {
	base := NewRegistry()
	require.NoError(t, base.Register("sandbox", "shell", signalCallback(SignalContinue),
		WithLock()))

	derived := base.Copy()

	assert.True(t, derived.Locked("sandbox"))
	err := derived.Register("sandbox", "x", signalCallback(SignalContinue))
	assert.ErrorIs(t, err, ErrSiteLocked)
}

func TestRegistryCopy_Inputs(t *testing.T) {
	base := NewRegistry()
	require.NoError(t, base.Designate("main", func(ctx Context) (string, error) {
		return "q", nil
	}))

	derived := base.Copy()

	fn, err := derived.InputFor("main")
	require.NoError(t, err)
	response, err := fn(NewContext(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, "q", response)
}

func TestRegistryInsert(t *testing.T) {
	reg := NewRegistry()

	opt, err := NewOption("q", signalCallback(SignalQuit))
	require.NoError(t, err)
	require.NoError(t, reg.Insert("main", opt))

	assert.True(t, reg.Contains("main", "q"))

	err = reg.Insert("main", nil)
	assert.ErrorIs(t, err, ErrNilCallback)
}
