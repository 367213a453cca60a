// Package gameerr defines the typed errors returned across the game core.
// Callers branch on Kind instead of matching message text.
package gameerr

import (
	"errors"
	"fmt"
)

// Kind classifies a game error.
type Kind string

const (
	InvalidTransition  Kind = "invalid_transition"
	Unauthorized       Kind = "unauthorized"
	NotFound           Kind = "not_found"
	InsufficientFunds  Kind = "insufficient_funds"
	ShopBlocked        Kind = "shop_blocked"
	InvalidRewardValue Kind = "invalid_reward_value"
	QuestBlocked       Kind = "quest_blocked"
	OutOfStock         Kind = "out_of_stock"
	Conflict           Kind = "conflict"
	InvalidArgument    Kind = "invalid_argument"
)

// Error is a classified game error.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Msg
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is.
var (
	ErrInvalidTransition  = &Error{Kind: InvalidTransition}
	ErrUnauthorized       = &Error{Kind: Unauthorized}
	ErrNotFound           = &Error{Kind: NotFound}
	ErrInsufficientFunds  = &Error{Kind: InsufficientFunds}
	ErrShopBlocked        = &Error{Kind: ShopBlocked}
	ErrInvalidRewardValue = &Error{Kind: InvalidRewardValue}
	ErrQuestBlocked       = &Error{Kind: QuestBlocked}
	ErrOutOfStock         = &Error{Kind: OutOfStock}
	ErrConflict           = &Error{Kind: Conflict}
	ErrInvalidArgument    = &Error{Kind: InvalidArgument}
)

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
