// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides the two identifier flavours used by geopost.

  - New: time-ordered UUIDv7 for primary keys (B-tree friendly in PostgreSQL).
  - NewRandom: fully random UUIDv4 for capabilities such as post access keys,
    where the value must not leak its creation time.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// NewRandom generates a new UUIDv4 string from crypto/rand.
func NewRandom() string {
	id, err := uuid.NewRandom()
	if err != nil {
		panic("uuid: failed to generate UUIDv4: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s parses as any UUID version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
