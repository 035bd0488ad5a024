// Package packet owns the wire contract for the four-part packet framing.
//
// Ownership boundary:
// - kind registries and default tables
// - head/neck/body/tail pack and parse pipelines
// - vouch/verify checkpoint dispatch
//
// A packet travels as head ‖ neck ‖ body ‖ tail. The head is a compact
// self-describing JSON object with two-character field tags; fields equal
// to their declared default are elided from the wire form. The neck
// authenticates the head, the tail integrity-checks the body; both are
// no-ops under the built-in "nada" strategies.
package packet
