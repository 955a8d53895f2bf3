// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/geopost/pkg/pointer"
)

/*
TestTo_CopiesValue returns independent pointers.
*/
func TestTo_CopiesValue(t *testing.T) {
	value := "title"
	first := pointer.To(value)
	value = "changed"

	assert.Equal(t, "title", *first)
	assert.NotSame(t, first, pointer.To("title"))
}
