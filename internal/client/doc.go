// Package client talks to the remote risk-assessment service.
//
// Client implements the two endpoints used by zonecheck:
//   - POST /api/check-security: assess the risk at a position
//   - POST /api/configure-user: validate home addresses and alert email
//
// Every failure is classified into the model error taxonomy: transport
// failures wrap model.ErrNetworkUnavailable (timeouts additionally wrap
// model.ErrRequestTimeout), non-2xx answers become *model.HTTPError, and
// undecodable success bodies wrap model.ErrMalformedResponse. Nothing is
// retried.
//
// All requests can be routed through a SOCKS5 proxy such as a local Tor
// daemon.
package client
