// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/geopost/pkg/query"
)

/*
TestStringSlice accepts repeated and comma-separated values alike.
*/
func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"beach", "sunset", "pier"}, query.StringSlice("beach, sunset", " pier ", ",,"))
	assert.Nil(t, query.StringSlice())
	assert.Nil(t, query.StringSlice(""))
}
