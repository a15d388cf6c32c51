// Package app assembles and runs the auth gRPC server.
package app
