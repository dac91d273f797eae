/*
Package session implements conversation management for the refinement chat.

Each chat turn is a read-modify-write of a stored conversation. The Manager
serializes those cycles per session with a reference-counted in-process lock
and, when configured, a distributed lock so replicas sharing a store do not
interleave turns.
*/
package session
