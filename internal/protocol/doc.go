// Package protocol owns the dirpost wire contract.
//
// Ownership boundary:
// - entry model (directory / file / sentinel)
// - metadata frame encode/decode primitives
// - decode-side path confinement
package protocol
