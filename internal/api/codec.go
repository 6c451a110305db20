package api

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	grpcproto "google.golang.org/grpc/encoding/proto"
	"google.golang.org/grpc/mem"
)

// wireMessage is implemented by every message of this package. The encoding
// is the protobuf binary format described by order.proto.
type wireMessage interface {
	appendWire(b []byte) []byte
	unmarshalWire(b []byte) error
}

var (
	_ wireMessage = (*GetOrderRequest)(nil)
	_ wireMessage = (*GetOrderResponse)(nil)
	_ wireMessage = (*ListOrdersRequest)(nil)
	_ wireMessage = (*ListOrdersResponse)(nil)
	_ wireMessage = (*CreateOrderRequest)(nil)
	_ wireMessage = (*CreateOrderResponse)(nil)
	_ wireMessage = (*UpdateOrderRequest)(nil)
	_ wireMessage = (*UpdateOrderResponse)(nil)
	_ wireMessage = (*DeleteOrderRequest)(nil)
	_ wireMessage = (*DeleteOrderResponse)(nil)
	_ wireMessage = (*StreamOrderUpdatesRequest)(nil)
	_ wireMessage = (*StreamOrderUpdatesResponse)(nil)
)

// Codec is registered under the "proto" name, so it serves the default gRPC
// content type. Messages of this package are encoded by wire.go; anything
// else, such as the health service messages, goes to the stock proto codec.
type Codec struct {
	fallback encoding.CodecV2
}

func (c Codec) Marshal(v any) (mem.BufferSlice, error) {
	if m, ok := v.(wireMessage); ok {
		return mem.BufferSlice{mem.SliceBuffer(m.appendWire(nil))}, nil
	}
	if c.fallback == nil {
		return nil, fmt.Errorf("proto codec: cannot marshal %T", v)
	}
	return c.fallback.Marshal(v)
}

func (c Codec) Unmarshal(data mem.BufferSlice, v any) error {
	if m, ok := v.(wireMessage); ok {
		if err := m.unmarshalWire(data.Materialize()); err != nil {
			return fmt.Errorf("proto codec: unmarshal %T: %w", v, err)
		}
		return nil
	}
	if c.fallback == nil {
		return fmt.Errorf("proto codec: cannot unmarshal %T", v)
	}
	return c.fallback.Unmarshal(data, v)
}

func (Codec) Name() string {
	return grpcproto.Name
}

func init() {
	encoding.RegisterCodecV2(Codec{fallback: encoding.GetCodecV2(grpcproto.Name)})
}
