/*
Package security holds transport security for the Palisade intake server.

The tls subpackage carries the certificate tooling: validation and
inspection helpers for the certs CLI commands, and the reloader the server
uses to serve renewed certificates without a restart.

Authentication and authorization are intentionally absent. Palisade
deployments sit behind the enterprise gateway, which owns identity; the
intake API itself is unauthenticated.
*/
package security
