// Package ui implements an interactive setlist editor using bubbletea's Elm architecture.
//
// The editor works on one event's setlist and has three views:
//  1. [SetlistView] : Browse, reorder, group and remove entries
//  2. [PickerView] : Pick a repertoire song to append (filterable [list.Model])
//  3. [KeyView] : Edit the key an entry is played in
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Every edit runs as a [tea.Cmd] against an [Editor]; a failed edit keeps the previous setlist on screen and shows
// the error in the footer.
//
// Keyboard navigation uses vim-style bindings (j/k, K/J, d, m/M, a, e, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
