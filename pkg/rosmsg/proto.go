package rosmsg

import (
	"google.golang.org/protobuf/encoding/protowire"
	"math"
)

// Field numbers are declared in rosmsg.proto

type protoMessage interface {
	appendProto(b []byte) []byte
}

func appendMessage(b []byte, num protowire.Number, m protoMessage) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendProto(nil))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendDoubles(b []byte, num protowire.Number, values []float64) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(values)*8))
	for _, v := range values {
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	}
	return b
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func (t *Time) appendProto(b []byte) []byte {
	b = appendInt(b, 1, int64(t.Sec))
	return appendInt(b, 2, int64(t.Nanosec))
}

func (h *Header) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &h.Stamp)
	return appendString(b, 2, h.FrameID)
}

func (s *String) appendProto(b []byte) []byte {
	return appendString(b, 1, s.Data)
}

func (m *Bool) appendProto(b []byte) []byte {
	return appendBool(b, 1, m.Data)
}

func (v *Vector3) appendProto(b []byte) []byte {
	b = appendDouble(b, 1, v.X)
	b = appendDouble(b, 2, v.Y)
	return appendDouble(b, 3, v.Z)
}

func (p *Point) appendProto(b []byte) []byte {
	b = appendDouble(b, 1, p.X)
	b = appendDouble(b, 2, p.Y)
	return appendDouble(b, 3, p.Z)
}

func (q *Quaternion) appendProto(b []byte) []byte {
	b = appendDouble(b, 1, q.X)
	b = appendDouble(b, 2, q.Y)
	b = appendDouble(b, 3, q.Z)
	return appendDouble(b, 4, q.W)
}

func (p *Pose) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &p.Position)
	return appendMessage(b, 2, &p.Orientation)
}

func (p *PoseWithCovariance) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &p.Pose)
	return appendDoubles(b, 2, p.Covariance[:])
}

func (t *Twist) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &t.Linear)
	return appendMessage(b, 2, &t.Angular)
}

func (t *TwistWithCovariance) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &t.Twist)
	return appendDoubles(b, 2, t.Covariance[:])
}

func (a *Accel) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &a.Linear)
	return appendMessage(b, 2, &a.Angular)
}

func (s *NavSatStatus) appendProto(b []byte) []byte {
	b = appendInt(b, 1, int64(s.Status))
	return appendInt(b, 2, int64(s.Service))
}

func (f *NavSatFix) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &f.Header)
	b = appendMessage(b, 2, &f.Status)
	b = appendDouble(b, 3, f.Latitude)
	b = appendDouble(b, 4, f.Longitude)
	b = appendDouble(b, 5, f.Altitude)
	b = appendDoubles(b, 6, f.PositionCovariance[:])
	return appendInt(b, 7, int64(f.PositionCovarianceType))
}

func (o *Odometry) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &o.Header)
	b = appendString(b, 2, o.ChildFrameID)
	b = appendMessage(b, 3, &o.Pose)
	return appendMessage(b, 4, &o.Twist)
}

func (m *Imu) appendProto(b []byte) []byte {
	b = appendMessage(b, 1, &m.Header)
	b = appendMessage(b, 2, &m.Orientation)
	b = appendDoubles(b, 3, m.OrientationCovariance[:])
	b = appendMessage(b, 4, &m.AngularVelocity)
	b = appendDoubles(b, 5, m.AngularVelocityCovariance[:])
	b = appendMessage(b, 6, &m.LinearAcceleration)
	return appendDoubles(b, 7, m.LinearAccelerationCovariance[:])
}
