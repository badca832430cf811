// Package harness provides utilities for integration testing the sqldesk CLI.
// It builds the binary once, runs it against an isolated home directory, and
// inspects both its output and the history database it leaves behind.
//
// Environment variables managed:
//   - SQLDESK_HOME: Isolated per test (temp directory)
//   - every other SQLDESK_* variable: removed, so debug logging stays off and
//     the connection comes from the test's settings.json
package harness
