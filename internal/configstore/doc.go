// Package configstore is the single source of truth for the user
// configuration (home addresses and alert email).
//
// A Store loads configuration from a Storage, saves it only after the
// remote service accepted it, and broadcasts every saved configuration to
// its subscribers. Broadcasts are best effort, so observers that must stay
// current (the watch command, for example) use a Watcher, which combines a
// subscription with a periodic re-poll of storage. A missed notification,
// or a save made by another process sharing the same database, is seen at
// the latest one poll interval later.
package configstore
