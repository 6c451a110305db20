package api

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field encoders follow proto3 rules: zero scalars are omitted, repeated
// messages are written one record per element, maps as key=1/value=2 entries.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 && !math.Signbit(v) {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendEmbedded(b []byte, num protowire.Number, m wireMessage) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendWire(nil))
}

func appendOrder(b []byte, num protowire.Number, o *Order) []byte {
	if o == nil {
		return b
	}
	return appendEmbedded(b, num, o)
}

// fieldFunc decodes one field from b and reports how many bytes it used.
// Returning 0 skips the field as unknown.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func decodeFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		used, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if used == 0 {
			used = protowire.ConsumeFieldValue(num, typ, b)
			if used < 0 {
				return protowire.ParseError(used)
			}
		}
		b = b[used:]
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func consumeVarint(typ protowire.Type, b []byte, dst *uint64) (int, error) {
	if typ != protowire.VarintType {
		return 0, nil
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func consumeInt32(typ protowire.Type, b []byte, dst *int32) (int, error) {
	var v uint64
	n, err := consumeVarint(typ, b, &v)
	if n > 0 {
		*dst = int32(v)
	}
	return n, err
}

func consumeInt64(typ protowire.Type, b []byte, dst *int64) (int, error) {
	var v uint64
	n, err := consumeVarint(typ, b, &v)
	if n > 0 {
		*dst = int64(v)
	}
	return n, err
}

func consumeDouble(typ protowire.Type, b []byte, dst *float64) (int, error) {
	if typ != protowire.Fixed64Type {
		return 0, nil
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = math.Float64frombits(v)
	return n, nil
}

// consumeEmbedded decodes a length-delimited sub-message into m.
func consumeEmbedded(typ protowire.Type, b []byte, m wireMessage) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	raw, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, m.unmarshalWire(raw)
}

func consumeOrder(typ protowire.Type, b []byte, dst **Order) (int, error) {
	o := new(Order)
	n, err := consumeEmbedded(typ, b, o)
	if n > 0 && err == nil {
		*dst = o
	}
	return n, err
}

func (m *Item) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.Name)
	b = appendDouble(b, 3, m.Price)
	return appendVarint(b, 4, int64(m.Quantity))
}

func (m *Item) unmarshalWire(b []byte) error {
	*m = Item{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Id)
		case 2:
			return consumeString(typ, b, &m.Name)
		case 3:
			return consumeDouble(typ, b, &m.Price)
		case 4:
			return consumeInt32(typ, b, &m.Quantity)
		}
		return 0, nil
	})
}

func (m *Order) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendVarint(b, 2, int64(m.Status))
	b = appendDouble(b, 3, m.Amount)
	b = appendString(b, 4, m.Address)
	b = appendVarint(b, 5, m.CreatedAt)
	b = appendVarint(b, 6, m.UpdatedAt)
	for _, it := range m.Items {
		if it == nil {
			it = &Item{}
		}
		b = appendEmbedded(b, 7, it)
	}
	return b
}

func (m *Order) unmarshalWire(b []byte) error {
	*m = Order{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Id)
		case 2:
			var v int32
			n, err := consumeInt32(typ, b, &v)
			if n > 0 {
				m.Status = OrderStatus(v)
			}
			return n, err
		case 3:
			return consumeDouble(typ, b, &m.Amount)
		case 4:
			return consumeString(typ, b, &m.Address)
		case 5:
			return consumeInt64(typ, b, &m.CreatedAt)
		case 6:
			return consumeInt64(typ, b, &m.UpdatedAt)
		case 7:
			it := new(Item)
			n, err := consumeEmbedded(typ, b, it)
			if n > 0 && err == nil {
				m.Items = append(m.Items, it)
			}
			return n, err
		}
		return 0, nil
	})
}

func (m *GetOrderRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.OrderId)
}

func (m *GetOrderRequest) unmarshalWire(b []byte) error {
	*m = GetOrderRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &m.OrderId)
		}
		return 0, nil
	})
}

func (m *GetOrderResponse) appendWire(b []byte) []byte {
	return appendOrder(b, 1, m.Order)
}

func (m *GetOrderResponse) unmarshalWire(b []byte) error {
	*m = GetOrderResponse{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeOrder(typ, b, &m.Order)
		}
		return 0, nil
	})
}

// filterEntry is one map<string, string> entry of ListOrdersRequest.filters.
type filterEntry struct {
	key, value string
}

func (e *filterEntry) appendWire(b []byte) []byte {
	b = appendString(b, 1, e.key)
	return appendString(b, 2, e.value)
}

func (e *filterEntry) unmarshalWire(b []byte) error {
	*e = filterEntry{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &e.key)
		case 2:
			return consumeString(typ, b, &e.value)
		}
		return 0, nil
	})
}

func (m *ListOrdersRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.UserId)
	b = appendVarint(b, 2, int64(m.Limit))
	b = appendVarint(b, 3, int64(m.Page))
	for k, v := range m.Filters {
		b = appendEmbedded(b, 4, &filterEntry{key: k, value: v})
	}
	return b
}

func (m *ListOrdersRequest) unmarshalWire(b []byte) error {
	*m = ListOrdersRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.UserId)
		case 2:
			return consumeInt32(typ, b, &m.Limit)
		case 3:
			return consumeInt32(typ, b, &m.Page)
		case 4:
			var e filterEntry
			n, err := consumeEmbedded(typ, b, &e)
			if n > 0 && err == nil {
				if m.Filters == nil {
					m.Filters = make(map[string]string)
				}
				m.Filters[e.key] = e.value
			}
			return n, err
		}
		return 0, nil
	})
}

func (m *ListOrdersResponse) appendWire(b []byte) []byte {
	for _, o := range m.Orders {
		if o == nil {
			o = &Order{}
		}
		b = appendEmbedded(b, 1, o)
	}
	return appendVarint(b, 2, int64(m.Total))
}

func (m *ListOrdersResponse) unmarshalWire(b []byte) error {
	*m = ListOrdersResponse{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			o := new(Order)
			n, err := consumeEmbedded(typ, b, o)
			if n > 0 && err == nil {
				m.Orders = append(m.Orders, o)
			}
			return n, err
		case 2:
			return consumeInt32(typ, b, &m.Total)
		}
		return 0, nil
	})
}

func (m *CreateOrderRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.UserId)
	return appendOrder(b, 2, m.Order)
}

func (m *CreateOrderRequest) unmarshalWire(b []byte) error {
	*m = CreateOrderRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.UserId)
		case 2:
			return consumeOrder(typ, b, &m.Order)
		}
		return 0, nil
	})
}

func (m *CreateOrderResponse) appendWire(b []byte) []byte {
	return appendOrder(b, 1, m.Order)
}

func (m *CreateOrderResponse) unmarshalWire(b []byte) error {
	*m = CreateOrderResponse{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeOrder(typ, b, &m.Order)
		}
		return 0, nil
	})
}

func (m *UpdateOrderRequest) appendWire(b []byte) []byte {
	return appendOrder(b, 1, m.Order)
}

func (m *UpdateOrderRequest) unmarshalWire(b []byte) error {
	*m = UpdateOrderRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeOrder(typ, b, &m.Order)
		}
		return 0, nil
	})
}

func (m *UpdateOrderResponse) appendWire(b []byte) []byte {
	return appendOrder(b, 1, m.Order)
}

func (m *UpdateOrderResponse) unmarshalWire(b []byte) error {
	*m = UpdateOrderResponse{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeOrder(typ, b, &m.Order)
		}
		return 0, nil
	})
}

func (m *DeleteOrderRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.OrderId)
}

func (m *DeleteOrderRequest) unmarshalWire(b []byte) error {
	*m = DeleteOrderRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &m.OrderId)
		}
		return 0, nil
	})
}

func (m *DeleteOrderResponse) appendWire(b []byte) []byte {
	return appendBool(b, 1, m.Success)
}

func (m *DeleteOrderResponse) unmarshalWire(b []byte) error {
	*m = DeleteOrderResponse{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			var v uint64
			n, err := consumeVarint(typ, b, &v)
			if n > 0 {
				m.Success = protowire.DecodeBool(v)
			}
			return n, err
		}
		return 0, nil
	})
}

func (m *StreamOrderUpdatesRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.OrderId)
}

func (m *StreamOrderUpdatesRequest) unmarshalWire(b []byte) error {
	*m = StreamOrderUpdatesRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &m.OrderId)
		}
		return 0, nil
	})
}

func (m *StreamOrderUpdatesResponse) appendWire(b []byte) []byte {
	b = appendOrder(b, 1, m.Order)
	b = appendVarint(b, 2, int64(m.UpdateType))
	return appendVarint(b, 3, m.Timestamp)
}

func (m *StreamOrderUpdatesResponse) unmarshalWire(b []byte) error {
	*m = StreamOrderUpdatesResponse{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeOrder(typ, b, &m.Order)
		case 2:
			var v int32
			n, err := consumeInt32(typ, b, &v)
			if n > 0 {
				m.UpdateType = UpdateType(v)
			}
			return n, err
		case 3:
			return consumeInt64(typ, b, &m.Timestamp)
		}
		return 0, nil
	})
}
