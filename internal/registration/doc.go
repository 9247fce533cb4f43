// Package registration pushes pending query definitions to the server instances
// of a server template.
//
// A Trigger reacts to ServerInstanceConnected events. It reads the remote data
// set definitions, builds a fresh WorkingSet and hands a run to a Scheduler so
// the notification never waits on network I/O. The Synchronizer then drains
// the working set against an endpoint from the Resolver:
//
//   - every pass attempts the items of a snapshot of the working set in order
//     and stops at the first failure;
//   - confirmed items are removed after the pass and never attempted again;
//   - between passes it sleeps a fixed backoff interval and re-resolves the
//     endpoint with a forced health re-check;
//   - the run ends Completed once the working set is empty, TimedOut when the
//     total budget runs out, or Aborted on an unexpected defect or shutdown.
//
// DataSetRegistered is published exactly once per Completed run and never
// otherwise.
package registration
