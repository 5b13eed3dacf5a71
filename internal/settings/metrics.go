package settings

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type operation string

const (
	opWrite    operation = "write"
	opRollback operation = "rollback"
)

// Terminal states of a mutating call.
const (
	outcomeCommitted    = "committed"
	outcomeInvalid      = "invalid"
	outcomeConflict     = "conflict"
	outcomeNotFound     = "not_found"
	outcomeUnauthorized = "unauthorized"
	outcomeError        = "error"
)

var mutations = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "settings_mutations_total",
		Help: "Number of setting mutations, differentiated by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeCommitted
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnknownType):
		return outcomeInvalid
	case errors.Is(err, ErrVersionConflict):
		return outcomeConflict
	case errors.Is(err, ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrUnauthorized):
		return outcomeUnauthorized
	default:
		return outcomeError
	}
}

func observe(op operation, err error) {
	mutations.WithLabelValues(string(op), outcomeOf(err)).Inc()
}
