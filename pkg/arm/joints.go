// Package arm exposes a servo controller as a named-joint manipulator with
// application units: degrees for positions, rpm for speeds, percent for
// torque load.
package arm

// Joint identifies a joint in the arm.
type Joint string

// Joint names for the ReactorX-200 arm.
const (
	Waist         Joint = "waist"
	Shoulder      Joint = "shoulder"
	Elbow         Joint = "elbow"
	WristAngle    Joint = "wrist_angle"
	WristRotation Joint = "wrist_rotation"
	Gripper       Joint = "gripper"
)

// AllJoints returns all joint names in order (matching servo indexes 0-5).
func AllJoints() []Joint {
	return []Joint{
		Waist,
		Shoulder,
		Elbow,
		WristAngle,
		WristRotation,
		Gripper,
	}
}
