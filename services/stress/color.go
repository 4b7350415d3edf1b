// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stress

import (
	"fmt"

	"github.com/mhplabs/mhp-backend/pkg/stats"
)

// HueForScore maps a 0-100 score onto the red-to-green hue ramp (0-120).
func HueForScore(score int) float64 {
	return stats.Clamp(float64(score), 0, 100) / 100 * 120
}

// ColorForScore renders the score's hue as an hsl() color string for
// display consumers. Saturation and lightness match the dashboard palette.
func ColorForScore(score *int) string {
	if score == nil {
		return "#FF3B30"
	}
	return fmt.Sprintf("hsl(%d, 78%%, 45%%)", stats.Round(HueForScore(*score)))
}
