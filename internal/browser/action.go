package browser

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"centerhub/internal/center"
)

// Action is an outbound action on a center.
type Action string

const (
	ActionMap        Action = "map"
	ActionCall       Action = "call"
	ActionMagistrate Action = "magistrate"
)

// Actions lists the supported actions.
var Actions = []Action{ActionMap, ActionCall, ActionMagistrate}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Actions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q (want map, call or magistrate)", s)
}

// Resolve returns the link behind action a for r. ok is false when the
// underlying field holds a placeholder; the action is then a no-op.
func Resolve(r center.Record, a Action) (link string, ok bool) {
	switch a {
	case ActionMap:
		return r.MapURL()
	case ActionCall:
		return center.CallURL(r.Phone)
	case ActionMagistrate:
		return center.CallURL(r.MagistratePhone)
	}
	return "", false
}

// Opener opens a link.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Perform resolves a for r and hands the link to o. It reports whether
// anything was opened.
func Perform(ctx context.Context, o Opener, r center.Record, a Action, logger *zap.Logger) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	link, ok := Resolve(r, a)
	if !ok {
		logger.Info("  ⏭️  Nothing to open", zap.String("center", r.CenterName), zap.String("action", string(a)))
		return false, nil
	}
	if err := o.Open(ctx, link); err != nil {
		return false, err
	}
	return true, nil
}
