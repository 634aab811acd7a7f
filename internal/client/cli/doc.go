// Package cli provides the interactive fact-share command-line client.
//
// It wires configuration, the local contact store, the alias registry
// client and a small REPL:
//
//	share [profile.json]   encode the profile and print a link
//	scan [text]            read a scanned code or link and merge the contact
//	list                   list contacts
//	show <ref>             show one contact by id, id prefix or remote id
//	backup                 upload the contact book to S3
//	whoami                 print the owner id used in shares
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// stdin is closed.
package cli
