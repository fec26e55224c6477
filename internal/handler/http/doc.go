// Package http implements the HTTP transport of the ROP server.
//
// Account routes issue JWTs. Authenticated clients open a ROP session and
// then POST one remote operation per request to /api/rop/{session}/{rop};
// the MAPI result code of the operation travels in the JSON reply while
// HTTP statuses are kept for transport and session failures. Tracing,
// access logging, compression and the optional body HMAC are middleware.
package http
