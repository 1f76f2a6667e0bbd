package inventory

import "github.com/stocker/backend/internal/domain/catalog"

// ThresholdRegion is the derived low-stock state of a quantity
type ThresholdRegion string

const (
	RegionAboveThreshold     ThresholdRegion = "ABOVE_THRESHOLD"
	RegionAtOrBelowThreshold ThresholdRegion = "AT_OR_BELOW_THRESHOLD"
)

// RegionOf classifies a quantity against the low-stock threshold
func RegionOf(quantity int) ThresholdRegion {
	if quantity <= catalog.LowStockThreshold {
		return RegionAtOrBelowThreshold
	}
	return RegionAboveThreshold
}

// CrossedBelowThreshold reports the ABOVE -> AT_OR_BELOW transition.
// Staying in a region or recovering upward is not a crossing.
func CrossedBelowThreshold(oldQuantity, newQuantity int) bool {
	return RegionOf(oldQuantity) == RegionAboveThreshold &&
		RegionOf(newQuantity) == RegionAtOrBelowThreshold
}
