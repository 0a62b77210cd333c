// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The read path runs backend records through the sync controller into the
// record cache, then through GroupRecords and Paginate. The write path runs
// through the delete orchestrator or a mutation confirmation, and only ever
// touches the cache after the backend has answered.
//
// Services import only domain, ports and small utility libraries (errgroup, uuid).
package services
