// Package datasource loads the persisted enrollment dataset.
//
// The CSV file is read once, de-duplicated, normalized and cached for the
// process lifetime; the canonical record set is immutable and shared
// read-only across interactions. An fsnotify watcher provides the explicit
// reload trigger: when the file changes on disk the set is rebuilt and
// atomically swapped in, and reload listeners are notified so interactive
// clients can refetch.
package datasource
