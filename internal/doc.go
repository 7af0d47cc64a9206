// Package internal contains private implementation details for simples3.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - s3api: SDK client interfaces the commands are written against
//   - validation: param presence checks and bucket/key/name rules
//   - keyenc: path-safe key encoders
//   - pool: bounded runner for batch copies
//   - metrics: Prometheus collectors for commands and cache lookups
//   - config: environment configuration for the binary
//   - server: HTTP surface over Client.Execute
//   - cli: cobra commands of the binary
//   - testutil: mocks and LocalStack helpers for tests
package internal
