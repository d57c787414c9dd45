// Package rosmsg holds the messages published by the bridge.
//
// Layouts and json field names follow the ROS 2 std_msgs, geometry_msgs,
// sensor_msgs and nav_msgs definitions so that a ROS side relay can map them
// one to one.
package rosmsg

import "math"

// Message is a value published on one topic
type Message interface {
	// TypeName is the ROS type, ex: "sensor_msgs/msg/Imu"
	TypeName() string

	appendProto(b []byte) []byte
}

type Time struct {
	Sec     int32  `json:"sec"`
	Nanosec uint32 `json:"nanosec"`
}

// TimeFromNanos splits a nanosecond timestamp into a ROS time.
// Seconds are int32 like builtin_interfaces/Time, stamps past 2038-01-19 are clamped to the last representable one.
func TimeFromNanos(ns uint64) Time {
	if ns/1e9 > math.MaxInt32 {
		return Time{Sec: math.MaxInt32, Nanosec: 1e9 - 1}
	}
	return Time{
		Sec:     int32(ns / 1e9),
		Nanosec: uint32(ns % 1e9),
	}
}

type Header struct {
	Stamp   Time   `json:"stamp"`
	FrameID string `json:"frame_id"`
}

type String struct {
	Data string `json:"data"`
}

func (*String) TypeName() string { return "std_msgs/msg/String" }

type Bool struct {
	Data bool `json:"data"`
}

func (*Bool) TypeName() string { return "std_msgs/msg/Bool" }

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

type PoseWithCovariance struct {
	Pose       Pose        `json:"pose"`
	Covariance [36]float64 `json:"covariance"`
}

type Twist struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

type TwistWithCovariance struct {
	Twist      Twist       `json:"twist"`
	Covariance [36]float64 `json:"covariance"`
}

type Accel struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

func (*Accel) TypeName() string { return "geometry_msgs/msg/Accel" }

const (
	NavSatStatusNoFix   = int8(-1)
	NavSatStatusFix     = int8(0)
	NavSatStatusSbasFix = int8(1)
	NavSatStatusGbasFix = int8(2)

	NavSatServiceGps = uint16(1)

	CovarianceTypeUnknown = uint8(0)
)

type NavSatStatus struct {
	Status  int8   `json:"status"`
	Service uint16 `json:"service"`
}

type NavSatFix struct {
	Header                 Header       `json:"header"`
	Status                 NavSatStatus `json:"status"`
	Latitude               float64      `json:"latitude"`
	Longitude              float64      `json:"longitude"`
	Altitude               float64      `json:"altitude"`
	PositionCovariance     [9]float64   `json:"position_covariance"`
	PositionCovarianceType uint8        `json:"position_covariance_type"`
}

func (*NavSatFix) TypeName() string { return "sensor_msgs/msg/NavSatFix" }

type Odometry struct {
	Header       Header              `json:"header"`
	ChildFrameID string              `json:"child_frame_id"`
	Pose         PoseWithCovariance  `json:"pose"`
	Twist        TwistWithCovariance `json:"twist"`
}

func (*Odometry) TypeName() string { return "nav_msgs/msg/Odometry" }

type Imu struct {
	Header                       Header     `json:"header"`
	Orientation                  Quaternion `json:"orientation"`
	OrientationCovariance        [9]float64 `json:"orientation_covariance"`
	AngularVelocity              Vector3    `json:"angular_velocity"`
	AngularVelocityCovariance    [9]float64 `json:"angular_velocity_covariance"`
	LinearAcceleration           Vector3    `json:"linear_acceleration"`
	LinearAccelerationCovariance [9]float64 `json:"linear_acceleration_covariance"`
}

func (*Imu) TypeName() string { return "sensor_msgs/msg/Imu" }
