// Package registry implements the hierarchical property store.
//
// The registry is the single data structure shared across interface
// lifecycle instances: a concurrency-safe table mapping path-segment
// sequences to arbitrary values, with exact lookup, prefix enumeration
// and change subscription. Writes into the registry are the only channel
// through which interface lifecycle status becomes externally observable.
//
// # Layout
//
// Lifecycle engines publish under the "interface" namespace:
//
//	interface.<ifname>.state       lifecycle state string
//	interface.<ifname>.type        technology tag
//	interface.<ifname>.retries     retry attempt count
//	interface.<ifname>.error       last apply error, if any
//	interface.<ifname>.connection  connectivity probe result
//
// The link monitor adds present/lower_up/ifindex/mac entries under the
// same prefix, and the DHCP lease handler publishes lease fields under
// interface.<ifname>.lease.
//
// # Ordering
//
// Each Put is atomic with respect to its own path. A subscriber observes
// the writes matching its prefix in store write order; no ordering is
// guaranteed across subscribers.
package registry
