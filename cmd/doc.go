// Package cmd implements the command-line interface for calagent.
//
// This package provides the following commands:
//   - (root): answer a one-shot query from the arguments, or start an
//     interactive session when no arguments are given
//   - auth: run the interactive Google authorization flow explicitly
//   - version: display version information
package cmd
