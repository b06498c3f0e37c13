// Package domain holds the core types shared across the madsearch layers.
package domain

// KeyPrefix is the namespace prefix for every key madsearch owns.
const KeyPrefix = "madsearch:"

// RecordKeyPrefix is the prefix under which index records are stored.
const RecordKeyPrefix = KeyPrefix + "rec:"

// IndexName is the name of the FT index over index records.
const IndexName = KeyPrefix + "rec:idx"

// DefaultEntityPrefix is the namespace the MadPlan backend writes board, list
// and card snapshots under. Override via config when the deployments differ.
const DefaultEntityPrefix = "madplan:"

// RebuildStampKey stores the unix-millisecond timestamp of the last
// successful full index rebuild.
const RebuildStampKey = KeyPrefix + "rebuild:last"
