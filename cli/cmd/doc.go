// Package cmd implements the promptgen subcommands.
//
// Each command is a kong command struct whose Run method receives a
// context carrying the parsed [kong.Context] (see [WithContext]) and the
// standard streams (see [WithStreams]).
package cmd
