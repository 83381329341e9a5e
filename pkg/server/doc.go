// Package server exposes the brickfall pipeline over HTTP.
//
// Routes:
//
//	POST /v1/analyze   snapshot in the body, JSON report out
//	POST /v1/render    snapshot in the body, ?format=dot|svg|png|json
//	GET  /healthz      liveness probe
//	GET  /metrics      Prometheus metrics
//
// The body of /v1/analyze and /v1/render is either the raw snapshot text or,
// with Content-Type application/json, an object of the form
//
//	{"snapshot": "1,0,1~1,2,1\n...", "details": true}
//
// Malformed or overlapping snapshots are answered with 400 and a JSON error
// carrying the machine-readable code from [errors.Code]. Every response
// carries an X-Request-Id header.
package server
