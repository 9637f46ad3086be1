// Package execsvc talks to the remote execution engine. Service is the
// consumed contract: run metadata, the run's timeline, log content, and the
// run control operations. Client is the REST implementation; tests use the
// scripted fake in internal/testutil instead.
package execsvc
