package inductive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quern-dev/quern/source/name"
	"github.com/quern-dev/quern/source/report"
)

func TestRuleInferErrorClassification(t *testing.T) {
	ctor := name.Anon.Str("c")

	// Ordinary kernel failures mean the derived rule is ill-typed.
	err := ruleInferError(report.New(report.NOT_A_FUNCTION, "boom"), ctor)
	re, ok := err.(*report.Error)
	require.True(t, ok)
	assert.Equal(t, report.BAD_COMPUTATION_RULE, re.Kind)

	// Running out of stack segments is fatal in its own right and must keep
	// its kind.
	exhausted := report.New(report.STACK_EXHAUSTED, "too deep")
	assert.Same(t, exhausted, ruleInferError(exhausted, ctor))

	// Anything that is not a kernel error passes through untouched.
	other := errors.New("plumbing")
	assert.Same(t, other, ruleInferError(other, ctor))
}
