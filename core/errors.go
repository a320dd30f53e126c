package core

import "errors"

var (
	// ErrGroupNotFound is returned by an AgentStore when the group does not
	// exist or is not owned by the requesting user.
	ErrGroupNotFound = errors.New("group not found")

	// ErrAgentTimeout marks an agent execution that exceeded its deadline.
	ErrAgentTimeout = errors.New("agent timeout")
)
