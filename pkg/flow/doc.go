// Package flow walks a form at fill time. The question fields of a
// model.Document form a state machine with one extra Terminal state:
//
//   - an option marked IsEnd moves to Terminal;
//   - an option whose NextQuestion resolves to a question moves there;
//   - anything else moves to the next question in document order, or to
//     Terminal after the last question.
//
// Engine applies that transition function, records the picked option value
// per question and supports Back. Back replays the visited path by default;
// WithStructuralBack switches to stepping through document order instead.
// Explicit branches can form loops. A question may be revisited, but once
// the path holds more hops than there are questions plus one the engine
// fails closed into Terminal.
//
// Once Terminal is reached the ordinary fields are paged sequentially by a
// Pager. Session ties the two stages together and can be parked as a
// Snapshot in a SnapshotStore between requests.
package flow
