package payment

import (
	"fmt"

	appErrors "dojo-admin/pkg/errors"
)

var validTransitions = map[Status][]Status{
	StatusPending: {
		StatusPaid,
		StatusOverdue,
	},
	StatusOverdue: {
		StatusPaid,
		StatusPending, // Due date extended
	},
	StatusPaid: {
		StatusPending, // Confirmation reverted
	},
}

// ValidateStatusTransition checks if status transition is allowed
func ValidateStatusTransition(current, next Status) error {
	allowed, exists := validTransitions[current]
	if !exists {
		return appErrors.NewAppError(
			appErrors.CodeTransition,
			fmt.Sprintf("Unknown current status: %s", current),
			nil,
		)
	}

	for _, candidate := range allowed {
		if next == candidate {
			return nil
		}
	}

	return appErrors.NewAppError(
		appErrors.CodeTransition,
		fmt.Sprintf("Cannot transition from %s to %s", current, next),
		nil,
	)
}

// AllowedTransitions returns allowed next statuses
func AllowedTransitions(current Status) []Status {
	return validTransitions[current]
}
