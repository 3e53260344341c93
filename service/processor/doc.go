// Package processor hosts the workers that run queued requests concurrently.
// Every worker consumes jobs from a messaging queue, runs them through the
// orchestrator and hands the outcome to a handler. Requests that time out are
// redelivered up to the configured retry limit; every other failure is final.
package processor
