// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query splits list-valued form and query parameters.
*/
package query

import "strings"

// StringSlice flattens repeated values that may each hold a comma-separated list.
// Entries are trimmed; empty ones are dropped.
func StringSlice(values ...string) []string {
	var res []string
	for _, value := range values {
		for _, v := range strings.Split(value, ",") {
			clean := strings.TrimSpace(v)
			if clean != "" {
				res = append(res, clean)
			}
		}
	}
	return res
}
