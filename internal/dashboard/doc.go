// Package dashboard is the page script: it builds the page for a session,
// dispatches widget changes and owns each session's fragment scheduler.
//
// An App serves many sessions. Each session gets a Runtime that serialises
// renders and input events under one lock, while its event bridge fragment
// runs on the Runtime's own ui.Scheduler. A fragment stuck on the broker
// therefore never delays the slider's publish path.
//
// A full render runs in a fixed order: state defaults,
// widget tree, region binding, connection, and finally a trigger of the
// bridge fragment.
package dashboard
