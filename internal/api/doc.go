// Package api provides the HTTP plumbing shared by every mail.tm operation.
// It builds a request from a method, path, optional query, optional JSON
// body and optional bearer token, performs it, and hands back the status
// code and raw body.
//
// # Headers
//
// Every request carries Accept: application/ld+json. Requests with a body
// also carry Content-Type: application/ld+json, and requests with a token
// carry Authorization: Bearer <token>.
//
// # Status Codes
//
// The package does not interpret HTTP status codes beyond [IsSuccess], which
// reports membership in the success set {200, 201, 204}. Mapping failures to
// typed errors is left to the caller, which knows which operation was
// attempted.
//
// # Transport Errors
//
// Failures to reach the server or to read the response are returned as
// [*NetworkError]. There is no retry.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. It holds no per-call state.
package api
