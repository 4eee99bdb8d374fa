// Package httpx is the HTTP transport layer under the SDK:
// - base URL resolution with default headers and bearer auth left to callers
// - buffered JSON requests with retry, exponential backoff and jitter
// - streaming requests that hand the live response body to the caller
// - a status error type carrying status, request id, Retry-After and body
// - hook points for logging/metrics without hard dependencies
package httpx
