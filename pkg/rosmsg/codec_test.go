package rosmsg

import (
	"encoding/json"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"math"
	"testing"
)

type field struct {
	typ protowire.Type
	v   uint64
	b   []byte
}

func parseFields(t *testing.T, b []byte) map[protowire.Number][]field {
	t.Helper()
	fields := make(map[protowire.Number][]field)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			t.Fatalf("invalid tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		f := field{typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.v, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			t.Fatalf("unexpected wire type %v for field %v", typ, num)
		}
		if n < 0 {
			t.Fatalf("invalid field %v: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
		fields[num] = append(fields[num], f)
	}
	return fields
}

func single(t *testing.T, fields map[protowire.Number][]field, num protowire.Number) field {
	t.Helper()
	values, ok := fields[num]
	if !ok || len(values) != 1 {
		t.Fatalf("field %v expected once, got %v", num, len(values))
	}
	return values[0]
}

func doubles(t *testing.T, b []byte, nums ...protowire.Number) []float64 {
	t.Helper()
	fields := parseFields(t, b)
	result := make([]float64, 0, len(nums))
	for _, num := range nums {
		f := single(t, fields, num)
		if f.typ != protowire.Fixed64Type {
			t.Fatalf("field %v is not a double", num)
		}
		result = append(result, math.Float64frombits(f.v))
	}
	return result
}

func sameFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}

func TestProtoCodec_Wrappers(t *testing.T) {
	codec := ProtoCodec{}

	payload, err := codec.Marshal(&String{Data: "Hello, world! 3"})
	if err != nil {
		t.Fatalf("unable to marshal string: %v", err)
	}
	var str wrapperspb.StringValue
	if err := proto.Unmarshal(payload, &str); err != nil {
		t.Fatalf("unable to unmarshal string msg: %v", err)
	}
	if str.GetValue() != "Hello, world! 3" {
		t.Errorf("invalid string value '%v'", str.GetValue())
	}

	cases := []struct {
		name  string
		value bool
	}{
		{"Ping true", true},
		{"Ping false", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			payload, err := codec.Marshal(&Bool{Data: c.value})
			if err != nil {
				t.Fatalf("unable to marshal bool: %v", err)
			}
			if len(payload) == 0 {
				t.Errorf("empty payload")
			}
			var b wrapperspb.BoolValue
			if err := proto.Unmarshal(payload, &b); err != nil {
				t.Fatalf("unable to unmarshal bool msg: %v", err)
			}
			if b.GetValue() != c.value {
				t.Errorf("invalid bool value %v, wants %v", b.GetValue(), c.value)
			}
		})
	}
}

func TestProtoCodec_Accel(t *testing.T) {
	msg := &Accel{
		Linear:  Vector3{X: 1.5, Y: math.NaN(), Z: -9.81},
		Angular: Vector3{X: math.Inf(1), Y: 0, Z: -0.25},
	}
	payload, err := ProtoCodec{}.Marshal(msg)
	if err != nil {
		t.Fatalf("unable to marshal accel: %v", err)
	}
	fields := parseFields(t, payload)

	linear := doubles(t, single(t, fields, 1).b, 1, 2, 3)
	if !sameFloats(linear, []float64{1.5, math.NaN(), -9.81}) {
		t.Errorf("invalid linear acceleration %v", linear)
	}
	angular := doubles(t, single(t, fields, 2).b, 1, 2, 3)
	if !sameFloats(angular, []float64{math.Inf(1), 0, -0.25}) {
		t.Errorf("invalid angular acceleration %v", angular)
	}
}

func TestProtoCodec_NavSatFixHeader(t *testing.T) {
	msg := &NavSatFix{
		Header:    Header{Stamp: TimeFromNanos(1634567890123456789), FrameID: "world_ned"},
		Latitude:  47.641468,
		Longitude: -122.140165,
		Altitude:  122.5,
	}
	payload, err := ProtoCodec{}.Marshal(msg)
	if err != nil {
		t.Fatalf("unable to marshal fix: %v", err)
	}
	fields := parseFields(t, payload)

	header := parseFields(t, single(t, fields, 1).b)
	var stamp timestamppb.Timestamp
	if err := proto.Unmarshal(single(t, header, 1).b, &stamp); err != nil {
		t.Fatalf("unable to unmarshal stamp: %v", err)
	}
	if stamp.GetSeconds() != 1634567890 || stamp.GetNanos() != 123456789 {
		t.Errorf("invalid stamp %v", stamp.String())
	}
	if frame := string(single(t, header, 2).b); frame != "world_ned" {
		t.Errorf("invalid frame id '%v'", frame)
	}

	position := doubles(t, payload, 3, 4, 5)
	if !sameFloats(position, []float64{47.641468, -122.140165, 122.5}) {
		t.Errorf("invalid gps position %v", position)
	}
	if covariance := single(t, fields, 6).b; len(covariance) != 9*8 {
		t.Errorf("invalid covariance length %v", len(covariance))
	}
}

func TestProtoCodec_Odometry(t *testing.T) {
	msg := &Odometry{
		ChildFrameID: "base_link",
		Pose: PoseWithCovariance{Pose: Pose{
			Position:    Point{X: 1, Y: 2, Z: 3},
			Orientation: Quaternion{X: 0.1, Y: 0.2, Z: 0.3, W: 0.4},
		}},
		Twist: TwistWithCovariance{Twist: Twist{
			Linear:  Vector3{X: 4, Y: 5, Z: 6},
			Angular: Vector3{X: 7, Y: 8, Z: 9},
		}},
	}
	payload, _ := ProtoCodec{}.Marshal(msg)
	fields := parseFields(t, payload)

	if child := string(single(t, fields, 2).b); child != "base_link" {
		t.Errorf("invalid child frame id '%v'", child)
	}
	pose := parseFields(t, parseFields(t, single(t, fields, 3).b)[1][0].b)
	if position := doubles(t, single(t, pose, 1).b, 1, 2, 3); !sameFloats(position, []float64{1, 2, 3}) {
		t.Errorf("invalid position %v", position)
	}
	if orientation := doubles(t, single(t, pose, 2).b, 1, 2, 3, 4); !sameFloats(orientation, []float64{0.1, 0.2, 0.3, 0.4}) {
		t.Errorf("invalid orientation %v", orientation)
	}
	twist := parseFields(t, parseFields(t, single(t, fields, 4).b)[1][0].b)
	if linear := doubles(t, single(t, twist, 1).b, 1, 2, 3); !sameFloats(linear, []float64{4, 5, 6}) {
		t.Errorf("invalid linear twist %v", linear)
	}
	if angular := doubles(t, single(t, twist, 2).b, 1, 2, 3); !sameFloats(angular, []float64{7, 8, 9}) {
		t.Errorf("invalid angular twist %v", angular)
	}
}

func TestJsonCodec_Imu(t *testing.T) {
	msg := &Imu{
		Orientation:        Quaternion{X: 0, Y: 0, Z: 0.7071, W: 0.7071},
		AngularVelocity:    Vector3{X: 0.1, Y: 0.2, Z: 0.3},
		LinearAcceleration: Vector3{X: 0, Y: 0, Z: -9.81},
	}
	payload, err := JsonCodec{}.Marshal(msg)
	if err != nil {
		t.Fatalf("unable to marshal imu: %v", err)
	}

	var content map[string]interface{}
	if err := json.Unmarshal(payload, &content); err != nil {
		t.Fatalf("unable to parse json '%v': %v", string(payload), err)
	}
	for _, key := range []string{"header", "orientation", "angular_velocity", "linear_acceleration", "orientation_covariance"} {
		if _, ok := content[key]; !ok {
			t.Errorf("missing json field '%v' in %v", key, string(payload))
		}
	}
	z := content["linear_acceleration"].(map[string]interface{})["z"].(float64)
	if z != -9.81 {
		t.Errorf("invalid linear acceleration z: %v, wants -9.81", z)
	}
}

func TestJsonCodec_NonFinite(t *testing.T) {
	msg := &Accel{
		Linear:  Vector3{X: math.NaN(), Y: 2, Z: -9.81},
		Angular: Vector3{X: math.Inf(-1)},
	}
	payload, err := JsonCodec{}.Marshal(msg)
	if err != nil {
		t.Fatalf("unable to marshal accel with NaN: %v", err)
	}

	var content struct {
		Linear  map[string]*float64 `json:"linear"`
		Angular map[string]*float64 `json:"angular"`
	}
	if err := json.Unmarshal(payload, &content); err != nil {
		t.Fatalf("unable to parse json '%v': %v", string(payload), err)
	}
	if v, ok := content.Linear["x"]; !ok || v != nil {
		t.Errorf("NaN should be written as null: %v", string(payload))
	}
	if v, ok := content.Angular["x"]; !ok || v != nil {
		t.Errorf("Inf should be written as null: %v", string(payload))
	}
	if v := content.Linear["z"]; v == nil || *v != -9.81 {
		t.Errorf("invalid linear acceleration z in %v", string(payload))
	}
}

func TestCodecByName(t *testing.T) {
	cases := []struct {
		name     string
		expected string
		wantErr  bool
	}{
		{"protobuf", CodecProtobuf, false},
		{"", CodecProtobuf, false},
		{"json", CodecJson, false},
		{"xml", "", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			codec, err := CodecByName(c.name)
			if c.wantErr {
				if err == nil {
					t.Errorf("an error is expected for '%v'", c.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if codec.Name() != c.expected {
				t.Errorf("invalid codec %v, wants %v", codec.Name(), c.expected)
			}
		})
	}
}

func TestTimeFromNanos(t *testing.T) {
	cases := []struct {
		name     string
		ns       uint64
		expected Time
	}{
		{"Zero", 0, Time{}},
		{"Seconds and nanos", 12*1e9 + 345, Time{Sec: 12, Nanosec: 345}},
		{"Last second of int32", math.MaxInt32*1e9 + 7, Time{Sec: math.MaxInt32, Nanosec: 7}},
		{"After 2038", (math.MaxInt32+1)*1e9 + 5, Time{Sec: math.MaxInt32, Nanosec: 999999999}},
		{"Max uint64", math.MaxUint64, Time{Sec: math.MaxInt32, Nanosec: 999999999}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if stamp := TimeFromNanos(c.ns); stamp != c.expected {
				t.Errorf("invalid time %#v, wants %#v", stamp, c.expected)
			}
		})
	}
}
