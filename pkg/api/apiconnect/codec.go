// Package apiconnect wires the api messages to Connect RPC: procedure names,
// handler constructors and typed clients for every service.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is the Connect codec name, which maps to application/json.
const CodecName = "json"

// jsonCodec encodes plain Go structs with encoding/json.
// It replaces Connect's protobuf-only JSON codec.
type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON registers the JSON codec on a handler or client.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSON()}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSON()}, opts...)
}
