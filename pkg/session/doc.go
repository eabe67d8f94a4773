/*
Package session serializes access to persisted runtime positions.

A knots Runtime holds no locks of its own; callers sharing a session must
coordinate externally. Manager provides that coordination with per-session
in-process mutexes and, optionally, a ports.DistributedLocker so several
replicas can serve the same session store.
*/
package session
