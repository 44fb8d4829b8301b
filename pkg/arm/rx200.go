package arm

import "math"

const (
	// maxAppDeg is one encoder step short of a full turn.
	maxAppDeg = 180 - 360.0/4096

	rpmToRad = math.Pi / 30

	// gripperRadius converts the gripper drive's rim speed to the linear
	// speed of the fingers.
	gripperRadius = 0.015
)

func rotaryUnits(maxTorque float64) Units {
	return Units{
		Position: Scale{
			App: Range{-180, maxAppDeg},
			Sys: Range{-math.Pi, maxAppDeg * math.Pi / 180},
		},
		Velocity: Scale{
			App: Range{0.229, 61},
			Sys: Range{0.229 * rpmToRad, 61 * rpmToRad},
		},
		Torque: Scale{
			App: Range{-100, 100},
			Sys: Range{-maxTorque, maxTorque},
		},
	}
}

func gripperUnits(maxForce float64) Units {
	return Units{
		Position: Scale{
			App: Range{-30, 60},
			Sys: Range{0.015, 0.035},
		},
		Velocity: Scale{
			App: Range{0.229, 61},
			Sys: Range{0.229 * rpmToRad * gripperRadius, 61 * rpmToRad * gripperRadius},
		},
		Torque: Scale{
			App: Range{-100, 100},
			Sys: Range{-maxForce, maxForce},
		},
	}
}

// ReactorX200Specs maps the six ReactorX-200 joints to servo indexes 0-5:
// factory unit profiles, conservative position limits and a gentle 10 rpm
// default speed.
func ReactorX200Specs() map[Joint]Spec {
	return map[Joint]Spec{
		Waist: {
			ID:        0,
			Units:     rotaryUnits(8),
			PosLimits: Range{-180, 180},
			VelLimits: Range{5, 50},
			Velocity:  10,
		},
		Shoulder: {
			ID:        1,
			Units:     rotaryUnits(18),
			PosLimits: Range{-108, 113},
			VelLimits: Range{5, 50},
			Velocity:  10,
		},
		Elbow: {
			ID:        2,
			Units:     rotaryUnits(13),
			PosLimits: Range{-108, 93},
			VelLimits: Range{5, 50},
			Velocity:  10,
		},
		WristAngle: {
			ID:        3,
			Units:     rotaryUnits(5),
			PosLimits: Range{-100, 123},
			VelLimits: Range{5, 50},
			Velocity:  10,
		},
		WristRotation: {
			ID:        4,
			Units:     rotaryUnits(5),
			PosLimits: Range{-180, 180},
			VelLimits: Range{5, 50},
			Velocity:  10,
		},
		Gripper: {
			ID:        5,
			Units:     gripperUnits(8),
			PosLimits: Range{-10, 20},
			VelLimits: Range{5, 50},
			Velocity:  10,
		},
	}
}

// NewReactorX200 builds the arm on its standard profile.
func NewReactorX200(ctrl Controller) (*Arm, error) {
	return New(ctrl, ReactorX200Specs())
}
