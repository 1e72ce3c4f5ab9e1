package core

import "github.com/google/uuid"

// ResourceID tags a GPU-side resource (texture, buffer, pipeline) so that
// allocation and teardown can be correlated in the logs.
type ResourceID string

func NewResourceID() ResourceID {
	return ResourceID(uuid.NewString())
}

func (id ResourceID) Short() string {
	if len(id) < 8 {
		return string(id)
	}
	return string(id[:8])
}
