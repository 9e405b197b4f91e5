// Package cli provides the interactive journaling command-line client.
//
// It wires configuration, the local SQLite store, the chosen remote store,
// the auth provider and the reflection provider, then runs a REPL on stdin.
// The REPL only reads input and prints results; every rule about entries
// and syncing lives in the services package.
//
// Commands:
//   - list / calendar [YYYY-MM] / show <id>: browse the journal
//   - add / edit <id> / delete <id>: change it
//   - sync / status: reconcile with the remote store and inspect the result
//   - register / login / logout: manage the remote identity
//
// Entry ids may be abbreviated to any unique prefix. A background watcher
// pings the server and shows online/offline in the prompt.
package cli
