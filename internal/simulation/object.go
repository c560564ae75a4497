package simulation

import "forcetree/internal/common"

// Object is anything in a simulation that has an identity and an absolute position.
type Object interface {
	// ID returns the unique identifier of the object.
	ID() uint64
	// Position returns the absolute position of the object.
	Position() common.Vector2D
	// Update advances the object to the given time in milliseconds.
	Update(now float64)
}

var _ Object = (*Node)(nil)
