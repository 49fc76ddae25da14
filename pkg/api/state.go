package api

import "fmt"

// projectTransitions lists the allowed status moves. Completed is terminal
// for everyone but owners (see ValidateProjectTransition).
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectPlanning:   {ProjectInProgress, ProjectOnHold},
	ProjectInProgress: {ProjectReview, ProjectOnHold, ProjectCompleted},
	ProjectReview:     {ProjectInProgress, ProjectCompleted},
	ProjectOnHold:     {ProjectPlanning, ProjectInProgress},
	ProjectCompleted:  {},
}

// ValidateProjectTransition checks whether a project may move from one
// status to another. Staying in the same status is always allowed. Owners
// may reopen a completed project to in_progress.
func ValidateProjectTransition(from, to ProjectStatus, actor Role) *APIError {
	if from == to {
		return nil
	}

	if from == ProjectCompleted && to == ProjectInProgress && actor.IsOwner() {
		return nil
	}

	allowed, exists := projectTransitions[from]
	if !exists {
		return NewInvalidRequestError("status",
			fmt.Sprintf("invalid transition from %s to %s", from, to))
	}

	for _, s := range allowed {
		if s == to {
			return nil
		}
	}

	return NewInvalidRequestError("status",
		fmt.Sprintf("invalid transition from %s to %s", from, to))
}
