package parser

// TwipsPerPoint is the number of twips (1/20 of a point) in a point.
const TwipsPerPoint = 20

// TwipsToPoints converts a row height in twips to points.
func TwipsToPoints(twips int) float64 {
	return float64(twips) / TwipsPerPoint
}
