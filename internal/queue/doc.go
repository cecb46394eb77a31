// Package queue models the work of a single run: the Item state machine,
// the deterministic path triple each recording maps to, and the WorkList the
// fetch and transcode lanes share.
//
// Nothing here is persisted. The only durable state is the presence of files
// at the derived paths, which is how a later run recognises recordings that
// were already downloaded.
//
// Statuses are partitioned between lanes: to_fetch and fetching belong to the
// fetch lane, fetched and transcoding to the transcode lane. Item.Transition
// enforces both the edge table and that partition.
package queue
