// Package api defines the request and response messages of the Splitopus
// RPC services. Messages are plain structs encoded as JSON on the wire;
// money is carried as decimal numbers.
package api
