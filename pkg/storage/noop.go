package storage

import "context"

// Noop is the adapter selected when no storage is available: every read is
// absent and every write is ignored.
type Noop struct{}

var _ Adapter = Noop{}

// NewNoop returns a Noop adapter.
func NewNoop() Noop { return Noop{} }

func (Noop) GetToken(context.Context) (string, bool)        { return "", false }
func (Noop) SetToken(context.Context, string)               {}
func (Noop) ClearToken(context.Context)                     {}
func (Noop) GetRefreshToken(context.Context) (string, bool) { return "", false }
func (Noop) SetRefreshToken(context.Context, string)        {}
func (Noop) GetUser(context.Context, any) bool              { return false }
func (Noop) SetUser(context.Context, any)                   {}
func (Noop) ClearAll(context.Context)                       {}
func (Noop) GetItem(context.Context, string) (string, bool) { return "", false }
func (Noop) SetItem(context.Context, string, string)        {}
func (Noop) RemoveItem(context.Context, string)             {}
