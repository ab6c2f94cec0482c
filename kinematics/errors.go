package kinematics

import "github.com/pkg/errors"

// NewElementNotFoundError is used when a chain has no element with the
// given name.
func NewElementNotFoundError(name string) error {
	return errors.Errorf("no chain element named %q", name)
}

// NewDuplicateElementError is used when an element name is already taken.
func NewDuplicateElementError(name string) error {
	return errors.Errorf("element %q already exists in the chain", name)
}

// NewUnexpectedElementError is used when a name resolves to the wrong kind
// of chain element.
func NewUnexpectedElementError(name string, expected, actual interface{}) error {
	return errors.Errorf("element %q: expected %T but got %T", name, expected, actual)
}

// NewInvalidAxisError is used when a rotation axis literal is not one of
// x, y, or z.
func NewInvalidAxisError(axis string) error {
	return errors.Errorf("invalid rotation axis %q, must be x, y, or z", axis)
}
