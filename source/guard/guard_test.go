package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quern-dev/quern/source/report"
)

// descend recurses n Steps deep and reports the deepest level reached.
func descend(g *Guard, n int, reached *int) error {
	if n == 0 {
		return nil
	}
	return g.Step(func() error {
		*reached++
		return descend(g, n-1, reached)
	})
}

func TestDeepRecursionSurvivesHandoffs(t *testing.T) {
	var g Guard
	depth := 3*FrameBudget + 17
	reached := 0
	require.NoError(t, descend(&g, depth, &reached))
	assert.Equal(t, depth, reached)
	assert.Equal(t, 0, g.depth, "depth unwinds to zero")
	assert.Equal(t, 0, g.handoffs, "handoffs are released on the way out")
}

func TestCeilingReported(t *testing.T) {
	var g Guard
	reached := 0
	err := descend(&g, FrameBudget*(MaxHandoffs+2), &reached)
	require.Error(t, err)
	re, ok := err.(*report.Error)
	require.True(t, ok)
	assert.Equal(t, report.STACK_EXHAUSTED, re.Kind)
	assert.Greater(t, reached, FrameBudget*MaxHandoffs, "the budget was genuinely consumed first")
}

func TestErrorsPropagateThroughHandoff(t *testing.T) {
	var g Guard
	boom := report.New(report.NOT_A_FUNCTION, "boom")
	var step func(n int) error
	step = func(n int) error {
		return g.Step(func() error {
			if n == 0 {
				return boom
			}
			return step(n - 1)
		})
	}
	err := step(FrameBudget + 5)
	assert.Equal(t, boom, err, "the error crosses the goroutine boundary unchanged")
}
