// Package dsl provides a fluent builder for constructing workflow
// snapshots programmatically, as an alternative to hand-writing node-link
// JSON.
//
// Example:
//
//	snapshot, err := dsl.New().
//		Start(0).
//		Message(1, "hello", domain.StatusSent).
//		Condition(2, "status == 'sent'").
//		End(3).
//		End(4).
//		Go(0, 1).
//		Go(1, 2).
//		Yes(2, 3).
//		No(2, 4).
//		Build()
//
// Build validates the assembled graph and returns its snapshot, ready for
// flowpath.Load or a workflow store.
package dsl
