package ranges

import "math"

// Range is a closed millimetre interval with a display label. Max is +Inf for
// an open-ended top bucket.
type Range struct {
	Min   float64
	Max   float64
	Label string
}

// Contains reports whether value lies within [Min, Max].
func (r Range) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// Sequence is an ordered, non-overlapping list of ranges covering an
// increasing domain. Sequences are fixed at build time.
type Sequence []Range

// Len returns the number of buckets.
func (s Sequence) Len() int {
	return len(s)
}

// Labels returns the display label of every bucket in order.
func (s Sequence) Labels() []string {
	labels := make([]string, len(s))
	for i, r := range s {
		labels[i] = r.Label
	}
	return labels
}

// Label returns the label for index i, or "" when i is outside the sequence.
func (s Sequence) Label(i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i].Label
}

// IndexOf returns the index of the first range containing value. The boolean
// is false when no range matches.
func IndexOf(seq Sequence, value float64) (int, bool) {
	for i, r := range seq {
		if r.Contains(value) {
			return i, true
		}
	}
	return -1, false
}

var inf = math.Inf(1)

// SheetWidth buckets sheet-shutter widths: 800~999, then 500mm steps up to
// 9500~9999, then everything from 10000.
var SheetWidth = Sequence{
	{Min: 800, Max: 999, Label: "800~999"},
	{Min: 1000, Max: 1499, Label: "1000~1499"},
	{Min: 1500, Max: 1999, Label: "1500~1999"},
	{Min: 2000, Max: 2499, Label: "2000~2499"},
	{Min: 2500, Max: 2999, Label: "2500~2999"},
	{Min: 3000, Max: 3499, Label: "3000~3499"},
	{Min: 3500, Max: 3999, Label: "3500~3999"},
	{Min: 4000, Max: 4499, Label: "4000~4499"},
	{Min: 4500, Max: 4999, Label: "4500~4999"},
	{Min: 5000, Max: 5499, Label: "5000~5499"},
	{Min: 5500, Max: 5999, Label: "5500~5999"},
	{Min: 6000, Max: 6499, Label: "6000~6499"},
	{Min: 6500, Max: 6999, Label: "6500~6999"},
	{Min: 7000, Max: 7499, Label: "7000~7499"},
	{Min: 7500, Max: 7999, Label: "7500~7999"},
	{Min: 8000, Max: 8499, Label: "8000~8499"},
	{Min: 8500, Max: 8999, Label: "8500~8999"},
	{Min: 9000, Max: 9499, Label: "9000~9499"},
	{Min: 9500, Max: 9999, Label: "9500~9999"},
	{Min: 10000, Max: inf, Label: "10000 이상"},
}

// SheetHeight buckets sheet-shutter heights from 1000 upwards.
var SheetHeight = Sequence{
	{Min: 1000, Max: 1499, Label: "1000~1499"},
	{Min: 1500, Max: 1999, Label: "1500~1999"},
	{Min: 2000, Max: 2499, Label: "2000~2499"},
	{Min: 2500, Max: 2999, Label: "2500~2999"},
	{Min: 3000, Max: 3499, Label: "3000~3499"},
	{Min: 3500, Max: 3999, Label: "3500~3999"},
	{Min: 4000, Max: 4499, Label: "4000~4499"},
	{Min: 4500, Max: 4999, Label: "4500~4999"},
	{Min: 5000, Max: 5499, Label: "5000~5499"},
	{Min: 5500, Max: 5999, Label: "5500~5999"},
	{Min: 6000, Max: inf, Label: "6000 이상"},
}

// GarageWidth is fully bounded: 0..6000mm.
var GarageWidth = Sequence{
	{Min: 0, Max: 2000, Label: "~2000"},
	{Min: 2001, Max: 2500, Label: "~2500"},
	{Min: 2501, Max: 3000, Label: "~3000"},
	{Min: 3001, Max: 3500, Label: "~3500"},
	{Min: 3501, Max: 4000, Label: "~4000"},
	{Min: 4001, Max: 5000, Label: "~5000"},
	{Min: 5001, Max: 6000, Label: "~6000"},
}

// GarageHeight is fully bounded: 0..2700mm.
var GarageHeight = Sequence{
	{Min: 0, Max: 2100, Label: "~2100"},
	{Min: 2101, Max: 2400, Label: "~2400"},
	{Min: 2401, Max: 2700, Label: "~2700"},
}
