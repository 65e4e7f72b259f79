package workflows

import (
	"context"

	"github.com/PolarWolf314/jupwallet/internal/audit"
	"github.com/PolarWolf314/jupwallet/internal/master"
)

// UnlockOptions configures the unlock workflow.
type UnlockOptions struct {
	Password []byte

	// Persist writes the session file so later invocations stay unlocked.
	Persist bool
}

// UnlockResult contains the outcome of an unlock operation.
type UnlockResult struct {
	State       master.State
	Persisted   bool
	SessionPath string
}

// Unlock authenticates with the master password and optionally persists
// the session.
//
// Returns ErrNotInitialized or ErrInvalidPassword on failure.
func Unlock(ctx context.Context, env *Env, opts UnlockOptions) (*UnlockResult, error) {
	err := env.Master.Authenticate(ctx, opts.Password)
	env.Audit.Outcome(audit.Entry{Operation: audit.OpUnlock, Source: SourcePassword}, err)
	if err != nil {
		return nil, err
	}

	result := &UnlockResult{State: master.Authenticated}
	if opts.Persist {
		err := env.Session.Start(ctx, opts.Password)
		env.Audit.Outcome(audit.Entry{Operation: audit.OpSessionStart, Source: SourcePassword}, err)
		if err != nil {
			return nil, err
		}
		result.Persisted = true
		result.SessionPath = env.Session.Path()
	}
	return result, nil
}
