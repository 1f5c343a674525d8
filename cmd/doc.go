// Package cmd implements the command-line interface for nosqlite database
// files. It provides a hierarchical command structure with operations for
// working with collections and their entries.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations on a collection (get, set, delete, etc.)
//   - col: Commands for managing collections (ls, create, drop, info)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See nosqlite -help for a list of all commands.
package cmd
