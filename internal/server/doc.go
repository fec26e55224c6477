// Package server runs the HTTP ROP endpoint and the gRPC health endpoint
// and stops both gracefully once the context given to Run is cancelled.
package server
