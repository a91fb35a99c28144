// Package comment holds the reconciliation logic for the deployment comment:
// ranking artifact links, extracting translation statistics from CI logs,
// locating the bot's comment, and editing individual regions of its body.
// Nothing in this package performs I/O.
package comment
