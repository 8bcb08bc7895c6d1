package ports

import "github.com/aretw0/macrograph/pkg/domain"

// Host is the capability boundary implemented by the scene owner.
// The engine never interprets object indices; it passes them through.
// Errors returned by a Host propagate unchanged to the caller of Execute.
type Host interface {
	SetObjectPosition(index int, position domain.Float3) error
	// SetObjectRotation receives the quaternion as [x, y, z, w].
	SetObjectRotation(index int, rotation domain.Float4) error
	SetObjectScale(index int, scale domain.Float3) error

	GetObjectPosition(index int) (domain.Float3, error)
	// GetObjectRotation returns the quaternion as [w, x, y, z].
	GetObjectRotation(index int) (domain.Float4, error)
	GetObjectScale(index int) (domain.Float3, error)
	GetObjectBoundingBox(index int) (domain.BoundingBox, error)

	// AddBox and AddSphere create a primitive and return its new object index.
	AddBox() (int, error)
	AddSphere() (int, error)
}
