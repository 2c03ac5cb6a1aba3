// Package lifecycle holds the complaint state machine.
//
// A complaint starts in Proses. An admin's first feedback moves it to
// Tanggapi; from there it is closed as Selesai. Batal can be reached from
// either non-terminal state. Selesai and Batal are terminal.
package lifecycle

import (
	"errors"
	"fmt"
)

type Status string

const (
	Proses   Status = "proses"
	Tanggapi Status = "tanggapi"
	Selesai  Status = "selesai"
	Batal    Status = "batal"
)

// CancelPlaceholder is shown for a cancelled complaint without a stored reason.
const CancelPlaceholder = "Tidak ada alasan pembatalan"

var ErrInvalidStatus = errors.New("invalid complaint status")

// ErrInvalidTransition is wrapped by Transition so callers can match with errors.Is.
var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[Status][]Status{
	Proses:   {Tanggapi, Batal},
	Tanggapi: {Selesai, Batal},
	Selesai:  nil,
	Batal:    nil,
}

// All returns every status in lifecycle order.
func All() []Status {
	return []Status{Proses, Tanggapi, Selesai, Batal}
}

func Parse(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == Selesai || s == Batal
}

func (s Status) String() string { return string(s) }

// Label is the Indonesian display name used in notifications.
func (s Status) Label() string {
	switch s {
	case Proses:
		return "Diproses"
	case Tanggapi:
		return "Ditanggapi"
	case Selesai:
		return "Selesai"
	case Batal:
		return "Dibatalkan"
	default:
		return string(s)
	}
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func Transition(from, to Status) (Status, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}
