// Package cli provides the interactive terminal client of the accounts
// service.
//
// On start the App mounts the session provider, waits for the saved
// credential (if any) to be checked against the server, and then runs a
// REPL. Two background watchers run next to it: one announces sign-in and
// sign-out transitions of the session (including the ones caused by the
// server rejecting the credential), the other pings the server and flips
// between online and offline mode.
//
// Commands: help, register, login, logout, whoami, status, exit | quit.
package cli
