// Package corr implements the host/device memory correspondence table: the
// per-device interval index, allocation records, mapping entries, the map
// engine that installs and tears them down, the attach/detach engine, and
// the reference-counting discipline that ties dynamic enter/exit calls to
// both. Everything in this package runs under a single per-device mutex;
// driver I/O is always issued with that lock released.
package corr
