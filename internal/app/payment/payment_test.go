package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_HappyPath(t *testing.T) {
	var g Gate
	assert.Equal(t, PhaseClosed, g.Phase())
	assert.False(t, g.IsOpen())

	g.Open()
	assert.Equal(t, PhaseIdle, g.Phase())

	require.NoError(t, g.Submit())
	assert.Equal(t, PhaseProcessing, g.Phase())

	require.NoError(t, g.Succeed("sim_1"))
	assert.Equal(t, PhaseSucceeded, g.Phase())
	assert.Equal(t, "sim_1", g.Receipt())

	require.NoError(t, g.Dismiss())
	assert.Equal(t, PhaseClosed, g.Phase())
	assert.Empty(t, g.Receipt())
}

func TestGate_FailureReturnsToIdle(t *testing.T) {
	var g Gate
	g.Open()
	require.NoError(t, g.Submit())

	require.NoError(t, g.Fail("declined"))
	assert.Equal(t, PhaseIdle, g.Phase())
	assert.Equal(t, "declined", g.Notice())

	// Retrying clears the notice.
	require.NoError(t, g.Submit())
	assert.Empty(t, g.Notice())
}

func TestGate_CancelOnlyFromIdle(t *testing.T) {
	var g Gate
	assert.ErrorIs(t, g.Cancel(), ErrInvalidTransition)

	g.Open()
	require.NoError(t, g.Submit())
	assert.ErrorIs(t, g.Cancel(), ErrInvalidTransition)
	assert.Equal(t, PhaseProcessing, g.Phase())

	require.NoError(t, g.Fail("x"))
	require.NoError(t, g.Cancel())
	assert.Equal(t, PhaseClosed, g.Phase())
	assert.Empty(t, g.Notice())
}

func TestGate_InvalidTransitions(t *testing.T) {
	var g Gate
	assert.ErrorIs(t, g.Submit(), ErrInvalidTransition)
	assert.ErrorIs(t, g.Succeed("r"), ErrInvalidTransition)
	assert.ErrorIs(t, g.Fail("n"), ErrInvalidTransition)
	assert.ErrorIs(t, g.Dismiss(), ErrInvalidTransition)

	g.Open()
	require.NoError(t, g.Submit())
	assert.ErrorIs(t, g.Submit(), ErrInvalidTransition)

	// Opening while processing keeps the attempt alive.
	g.Open()
	assert.Equal(t, PhaseProcessing, g.Phase())
}

func TestPhase_MarshalText(t *testing.T) {
	text, err := PhaseSucceeded.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "succeeded", string(text))
}

func TestSimulated_Succeeds(t *testing.T) {
	receipt, err := Simulated{Delay: time.Millisecond}.Submit(context.Background(), DefaultCharge)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.ID, "sim_"), receipt.ID)
}

func TestSimulated_Declines(t *testing.T) {
	sim := Simulated{Decide: func(Charge) error { return &FailureError{Reason: "card declined"} }}

	_, err := sim.Submit(context.Background(), DefaultCharge)

	var failure *FailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "card declined", failure.Reason)

	_, err = Simulated{}.Submit(context.Background(), Charge{Amount: 0, Currency: "INR"})
	assert.ErrorAs(t, err, &failure)
}

func TestSimulated_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulated{Delay: time.Hour}.Submit(ctx, DefaultCharge)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Submit(context.Background(), DefaultCharge)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNotice(t *testing.T) {
	assert.Contains(t, Notice(ErrUnavailable), "not available")
	assert.Equal(t, "Payment failed: card declined", Notice(&FailureError{Reason: "card declined"}))
	assert.Contains(t, Notice(context.DeadlineExceeded), "timed out")
	assert.Contains(t, Notice(errors.New("boom")), "could not be completed")
}
