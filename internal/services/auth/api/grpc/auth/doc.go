// Package auth implements the auth.v1.AuthService gRPC handlers.
package auth
