// Package syncer implements one-way synchronization of a local directory tree
// into a remote object-storage container.
//
// A run walks the tree, compares each file's modification time with the
// remote object's last-modified timestamp, uploads what is missing or stale
// and, for targets that purge, deletes remote objects that no longer exist
// locally. The remote store is the only state; nothing is kept between runs.
package syncer
