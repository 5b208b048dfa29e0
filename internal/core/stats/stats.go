// Package stats holds the ratio helpers used by every report.
package stats

// Percentage returns part/total*100, or 0 when total is not positive.
func Percentage(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// SuccessRate is the share of decided grants that were awarded.
func SuccessRate(awarded, rejected int64) float64 {
	return Percentage(float64(awarded), float64(awarded+rejected))
}
