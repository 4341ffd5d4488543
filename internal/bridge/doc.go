// Package bridge moves inbound broker messages into session state.
//
// A Bridge is run as a ui.Fragment. Each tick it writes a fresh random value
// into the first display region, takes the latest payload from its Source,
// stores it under session.KeyPicoMsg and writes it into the second region.
//
// Two Sources are provided:
//
//   - Inbox (poll mode, the default): fed by a Feed that holds one persistent
//     subscription for the whole process and fans messages out to a bounded,
//     drop-oldest Inbox per session. Receive never blocks.
//   - OneshotSource: connects, waits for one message and disconnects on every
//     call, bounded by a timeout. A silent topic fails the tick instead of
//     hanging it.
package bridge
