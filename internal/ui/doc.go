// Package ui implements the interactive terminal surfaces using bubbletea's Elm architecture.
//
// Two surfaces share the same session manager and queue mirror:
//  1. [QueueModel] : The main window. Browse the download queue, add links,
//     remove jobs, clear finished work, and manage the session.
//  2. [CompanionModel] : A small always-on-top style companion. Accepts
//     pasted or dropped links and shows compact queue counters.
//
// Both models implement bubbletea's standard Init/Update/View pattern. Queue
// snapshots pushed by the daemon flow through a channel subscription on the
// mirror, so a change made on one surface appears on the other without
// polling.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
