// Package testutil contains helpers used across tests to script models and
// build tool markup without repeating the wire format in every test. They are
// not intended for production usage.
package testutil
