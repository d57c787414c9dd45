package simulator

// Method is the name of a msgpack-rpc method exposed by the simulator
type Method string

const (
	MethodPing                        = Method("ping")
	MethodGetServerVersion            = Method("getServerVersion")
	MethodGetMinRequiredClientVersion = Method("getMinRequiredClientVersion")
	MethodEnableApiControl            = Method("enableApiControl")
	MethodArmDisarm                   = Method("armDisarm")
	MethodGetMultirotorState          = Method("getMultirotorState")
)

const (
	// ClientVersion is the rpc api version implemented by this client
	ClientVersion = 1
	// MinRequiredServerVersion is the oldest simulator api version supported
	MinRequiredServerVersion = 1

	DefaultAddress = "127.0.0.1:41451"
)

type Vector3r struct {
	X float64 `codec:"x_val"`
	Y float64 `codec:"y_val"`
	Z float64 `codec:"z_val"`
}

type Quaternionr struct {
	W float64 `codec:"w_val"`
	X float64 `codec:"x_val"`
	Y float64 `codec:"y_val"`
	Z float64 `codec:"z_val"`
}

type GeoPoint struct {
	Latitude  float64 `codec:"latitude"`
	Longitude float64 `codec:"longitude"`
	Altitude  float64 `codec:"altitude"`
}

/*
KinematicsState is the estimated rigid body state.

Position and Orientation form the pose, LinearVelocity and AngularVelocity
the twist.
*/
type KinematicsState struct {
	Position            Vector3r    `codec:"position"`
	Orientation         Quaternionr `codec:"orientation"`
	LinearVelocity      Vector3r    `codec:"linear_velocity"`
	AngularVelocity     Vector3r    `codec:"angular_velocity"`
	LinearAcceleration  Vector3r    `codec:"linear_acceleration"`
	AngularAcceleration Vector3r    `codec:"angular_acceleration"`
}

type CollisionInfo struct {
	HasCollided      bool     `codec:"has_collided"`
	Normal           Vector3r `codec:"normal"`
	ImpactPoint      Vector3r `codec:"impact_point"`
	Position         Vector3r `codec:"position"`
	PenetrationDepth float64  `codec:"penetration_depth"`
	TimeStamp        uint64   `codec:"time_stamp"`
	ObjectName       string   `codec:"object_name"`
	ObjectId         int      `codec:"object_id"`
}

type RCData struct {
	Timestamp     uint64  `codec:"timestamp"`
	Pitch         float64 `codec:"pitch"`
	Roll          float64 `codec:"roll"`
	Throttle      float64 `codec:"throttle"`
	Yaw           float64 `codec:"yaw"`
	Switches      uint    `codec:"switches"`
	VendorId      string  `codec:"vendor_id"`
	IsInitialized bool    `codec:"is_initialized"`
	IsValid       bool    `codec:"is_valid"`
}

type LandedState int

const (
	LandedStateLanded = LandedState(0)
	LandedStateFlying = LandedState(1)
)

// MultirotorState is one snapshot of the vehicle as returned by getMultirotorState
type MultirotorState struct {
	Collision           CollisionInfo   `codec:"collision"`
	KinematicsEstimated KinematicsState `codec:"kinematics_estimated"`
	GpsLocation         GeoPoint        `codec:"gps_location"`
	Timestamp           uint64          `codec:"timestamp"` // nanoseconds
	LandedState         LandedState     `codec:"landed_state"`
	RCData              RCData          `codec:"rc_data"`
	Ready               bool            `codec:"ready"`
	ReadyMessage        string          `codec:"ready_message"`
	CanArm              bool            `codec:"can_arm"`
}

// Orientation returns the estimated vehicle orientation
func (m *MultirotorState) Orientation() Quaternionr {
	return m.KinematicsEstimated.Orientation
}
