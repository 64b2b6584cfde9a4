// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"fmt"
	"strconv"
	"time"
)

// FormatRecord converts a row of warehouse values to their textual form.
// NULL values become empty strings, numbers keep their shortest exact
// representation and times are rendered in RFC 3339.
func FormatRecord(values []any) []string {
	record := make([]string, len(values))
	for i, value := range values {
		record[i] = formatValue(value)
	}
	return record
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case *float64:
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
