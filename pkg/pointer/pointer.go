// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer builds pointers to values for optional fields.

Partial updates (post and user patches) mark a field as present with a non-nil
pointer; To creates one from a literal or a function result.
*/
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}
