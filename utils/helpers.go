package utils

// IsValidInterval reports whether interval names a ClickHouse toStartOf*
// bucket the stats queries support.
func IsValidInterval(interval string) bool {
	switch interval {
	case "Hour", "Day", "Week", "Month", "Year":
		return true
	default:
		return false
	}
}
