package rosmsg

import (
	"fmt"
	"github.com/ugorji/go/codec"
)

type Codec interface {
	Name() string
	Marshal(msg Message) ([]byte, error)
}

const (
	CodecProtobuf = "protobuf"
	CodecJson     = "json"
)

// CodecByName returns the codec configured with the -payload-format flag
func CodecByName(name string) (Codec, error) {
	switch name {
	case CodecProtobuf, "":
		return ProtoCodec{}, nil
	case CodecJson:
		return JsonCodec{}, nil
	}
	return nil, fmt.Errorf("unknown payload format '%v', only %v or %v", name, CodecProtobuf, CodecJson)
}

// ProtoCodec writes the protobuf wire format, non finite floats are kept as is
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return CodecProtobuf }

func (ProtoCodec) Marshal(msg Message) ([]byte, error) {
	return msg.appendProto(nil), nil
}

var jh = &codec.JsonHandle{}

// JsonCodec writes ROS field names. NaN and Inf values are written as null.
type JsonCodec struct{}

func (JsonCodec) Name() string { return CodecJson }

func (JsonCodec) Marshal(msg Message) ([]byte, error) {
	var payload []byte
	if err := codec.NewEncoderBytes(&payload, jh).Encode(msg); err != nil {
		return nil, fmt.Errorf("unable to marshal %v to json: %w", msg.TypeName(), err)
	}
	return payload, nil
}
