// Package main hosts the dicomscrub CLI entrypoint and command graph.
//
// The Cobra-based command tree wires configuration resolution, structured
// logging, preflight checks, and the de-identification pipeline together.
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
