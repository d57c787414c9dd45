package bridge

import (
	"github.com/cyrilix/airsim-bridge/pkg/rosmsg"
	"github.com/cyrilix/airsim-bridge/pkg/simulator"
)

// Values are copied as is: no unit conversion, no frame transform, NaN kept.

func vector3(v simulator.Vector3r) rosmsg.Vector3 {
	return rosmsg.Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

func quaternion(q simulator.Quaternionr) rosmsg.Quaternion {
	return rosmsg.Quaternion{X: q.X, Y: q.Y, Z: q.Z, W: q.W}
}

func newAccel(state *simulator.MultirotorState) *rosmsg.Accel {
	k := state.KinematicsEstimated
	return &rosmsg.Accel{
		Linear:  vector3(k.LinearAcceleration),
		Angular: vector3(k.AngularAcceleration),
	}
}

func newNavSatFix(state *simulator.MultirotorState, header rosmsg.Header) *rosmsg.NavSatFix {
	return &rosmsg.NavSatFix{
		Header:    header,
		Latitude:  state.GpsLocation.Latitude,
		Longitude: state.GpsLocation.Longitude,
		Altitude:  state.GpsLocation.Altitude,
	}
}

func newOdometry(state *simulator.MultirotorState, header rosmsg.Header, childFrameID string) *rosmsg.Odometry {
	k := state.KinematicsEstimated
	return &rosmsg.Odometry{
		Header:       header,
		ChildFrameID: childFrameID,
		Pose: rosmsg.PoseWithCovariance{
			Pose: rosmsg.Pose{
				Position:    rosmsg.Point{X: k.Position.X, Y: k.Position.Y, Z: k.Position.Z},
				Orientation: quaternion(k.Orientation),
			},
		},
		Twist: rosmsg.TwistWithCovariance{
			Twist: rosmsg.Twist{
				Linear:  vector3(k.LinearVelocity),
				Angular: vector3(k.AngularVelocity),
			},
		},
	}
}

// newImu reads the orientation through MultirotorState.Orientation, angular velocity comes from the twist
func newImu(state *simulator.MultirotorState, header rosmsg.Header) *rosmsg.Imu {
	k := state.KinematicsEstimated
	return &rosmsg.Imu{
		Header:             header,
		Orientation:        quaternion(state.Orientation()),
		AngularVelocity:    vector3(k.AngularVelocity),
		LinearAcceleration: vector3(k.LinearAcceleration),
	}
}
