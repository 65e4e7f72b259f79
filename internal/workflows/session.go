package workflows

import (
	"context"
	"time"

	"github.com/PolarWolf314/jupwallet/internal/audit"
	"github.com/PolarWolf314/jupwallet/internal/master"
)

// SessionResult describes the session after a session workflow.
type SessionResult struct {
	// Active is true when a usable session key could be loaded without the
	// password.
	Active      bool
	Initialized bool
	FilePresent bool
	SessionPath string
	CreatedAt   time.Time
	WalletCount int
	State       master.State
}

// StartSession persists the existing session key, unwrapped with password.
// Wallets stay readable.
func StartSession(ctx context.Context, env *Env, password []byte) (*SessionResult, error) {
	err := env.Session.Start(ctx, password)
	env.Audit.Outcome(audit.Entry{Operation: audit.OpSessionStart, Source: SourcePassword}, err)
	if err != nil {
		return nil, err
	}
	return SessionStatus(ctx, env)
}

// RegenerateSession replaces the session key with a new random one.
//
// Every wallet encrypted under the old key becomes unreadable, so callers
// must confirm with the operator first. A wrong password changes nothing.
func RegenerateSession(ctx context.Context, env *Env, password []byte) (*SessionResult, error) {
	err := env.Session.Regenerate(ctx, password)
	env.Audit.Outcome(audit.Entry{Operation: audit.OpSessionRegenerate, Source: SourcePassword}, err)
	if err != nil {
		return nil, err
	}
	return SessionStatus(ctx, env)
}

// ClearSession removes the persisted session. The master record and the
// wallets are untouched.
func ClearSession(ctx context.Context, env *Env) (*SessionResult, error) {
	err := env.Session.Clear()
	env.Audit.Outcome(audit.Entry{Operation: audit.OpSessionClear}, err)
	if err != nil {
		return nil, err
	}
	return SessionStatus(ctx, env)
}

// SessionStatus reports the session state without changing anything.
func SessionStatus(ctx context.Context, env *Env) (*SessionResult, error) {
	info, err := env.Session.Info(ctx)
	if err != nil {
		return nil, err
	}

	result := &SessionResult{
		Initialized: info.Exists,
		FilePresent: info.FilePresent,
		SessionPath: env.Session.Path(),
		CreatedAt:   info.CreatedAt,
		WalletCount: info.WalletCount,
		Active:      env.Session.HasSession(ctx),
	}

	result.State, err = env.Master.State(ctx)
	if err != nil {
		return nil, err
	}
	return result, nil
}
