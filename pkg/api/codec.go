// Package api defines the bistro.v1 RPC surface: message types, procedure
// names, and Connect handlers and clients for each service. Messages are
// plain structs carried by a JSON codec.
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec marshals messages with encoding/json. It registers under the name
// "json", so handlers answer application/json and application/connect+json.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}
