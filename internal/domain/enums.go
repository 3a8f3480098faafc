// Package domain defines the core domain models for the event gateway.
package domain

// RuntimeStatus represents the lifecycle status of an agent runtime.
type RuntimeStatus string

const (
	RuntimeStatusCreating RuntimeStatus = "CREATING"
	RuntimeStatusActive   RuntimeStatus = "ACTIVE"
	RuntimeStatusUpdating RuntimeStatus = "UPDATING"
	RuntimeStatusFailed   RuntimeStatus = "FAILED"
	RuntimeStatusDeleting RuntimeStatus = "DELETING"
	RuntimeStatusDeleted  RuntimeStatus = "DELETED"
)

// Valid reports whether the status is a known runtime status.
func (s RuntimeStatus) Valid() bool {
	switch s {
	case RuntimeStatusCreating, RuntimeStatusActive, RuntimeStatusUpdating,
		RuntimeStatusFailed, RuntimeStatusDeleting, RuntimeStatusDeleted:
		return true
	}
	return false
}

// ArchitectureType represents the agent architecture of a runtime.
type ArchitectureType string

const (
	ArchitectureSingle ArchitectureType = "SINGLE"
	ArchitectureSwarm  ArchitectureType = "SWARM"
)

// Valid reports whether the architecture type is known.
func (a ArchitectureType) Valid() bool {
	return a == ArchitectureSingle || a == ArchitectureSwarm
}
