package scene

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NewNodeNotFoundError is used when an ID does not resolve to a live node.
func NewNodeNotFoundError(id uuid.UUID) error {
	return errors.Errorf("no scene node with id %q", id)
}

// NewNodeLockedError is used when a transform update targets a locked node.
func NewNodeLockedError(name string) error {
	return errors.Errorf("scene node %q is locked, its transform is owned by the rig", name)
}

// NewRootRemovalError is used when removal targets the world root.
func NewRootRemovalError() error {
	return errors.New("cannot remove the world root")
}
