package ports

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// OtpStep identifies which handover a verification code protects.
type OtpStep string

const (
	// OtpStepPickup protects the restaurant handover.
	OtpStepPickup OtpStep = "pickup"
	// OtpStepDelivery protects the customer handover.
	OtpStepDelivery OtpStep = "delivery"
)

// OTP verification errors.
var (
	// ErrOtpMismatch is returned when the presented code does not match.
	ErrOtpMismatch = errors.New("verification code mismatch")
	// ErrOtpLocked is returned when the step is locked after repeated
	// mismatches, regardless of code correctness.
	ErrOtpLocked = errors.New("verification step is locked")
)

// OtpStore issues and verifies the single-use, time-scoped codes gating
// pickup and delivery handovers.
//
// Contract:
//   - a code expires after its TTL and is consumed on successful verification
//   - a mismatch never mutates assignment state
//   - three consecutive mismatches on the same code lock the step for a
//     cool-down window; attempts during the lock fail with ErrOtpLocked
type OtpStore interface {
	// Issue stores a fresh code for the assignment step, replacing any
	// previous code and resetting the mismatch counter.
	Issue(ctx context.Context, assignmentID kernel.UUID, step OtpStep, code string, ttl time.Duration) error

	// Verify checks the presented code. On success the code is consumed. On
	// mismatch it returns ErrOtpMismatch; once the step is locked it returns
	// ErrOtpLocked. A missing or expired code fails with a not-found error.
	Verify(ctx context.Context, assignmentID kernel.UUID, step OtpStep, code string) error
}
