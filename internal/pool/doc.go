// Package pool runs a list of commands with bounded concurrency.
//
// It mirrors the command pool of the AWS SDKs: every command runs even when
// others fail, and the caller observes each one through before, fulfilled and
// rejected callbacks.
package pool
