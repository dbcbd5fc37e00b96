// Package session owns the process-wide state of a scanning session.
//
// Open takes an exclusive lock on the data directory, opens the offline
// queue, seeds and starts the network monitor and starts the flush
// coordinator. Close detaches the reconnect listener, attempts a final flush
// when the backend is reachable (otherwise entries stay persisted for the
// next session), closes the queue and releases the lock.
package session
