package dynamo

import "errors"

// Domain errors for solve operations.
var (
	// ErrNonFiniteState indicates NaN or Inf in a state or derivative.
	ErrNonFiniteState = errors.New("dynamo: non-finite state (NaN or Inf detected)")

	// ErrStepSizeUnderflow indicates rejections drove the step below its floor.
	ErrStepSizeUnderflow = errors.New("dynamo: step size below minimum")

	// ErrMaxRejections indicates too many consecutive rejected steps.
	ErrMaxRejections = errors.New("dynamo: too many consecutive step rejections")

	// ErrMaxSteps indicates the total step budget was exhausted.
	ErrMaxSteps = errors.New("dynamo: maximum number of steps exceeded")

	// ErrInvalidProblem indicates malformed input rejected before stepping.
	ErrInvalidProblem = errors.New("dynamo: invalid problem")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrContextCanceled indicates the solve was interrupted between steps.
	ErrContextCanceled = errors.New("dynamo: solve canceled by context")
)
