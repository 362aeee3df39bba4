// Package host composes intcode sessions: a directed graph of sessions
// driven by a ready-queue scheduler, amplifier chains and feedback loops
// built on it, a polled packet network, and a text protocol adapter.
//
// Every adapter drives its sessions from a single goroutine; only
// MaxSignal runs independent evaluations in parallel.
package host
