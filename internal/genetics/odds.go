package genetics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Punnett grid cell keys, in evaluation order.
const (
	Roll1 = "roll1" // sire[0] x dam[0]
	Roll2 = "roll2" // sire[0] x dam[1]
	Roll3 = "roll3" // sire[1] x dam[0]
	Roll4 = "roll4" // sire[1] x dam[1]
)

// DefaultCellWeight is used for any missing Punnett cell.
const DefaultCellWeight = 25.0

// PunnettWeights maps the roll1..roll4 cells to relative weights.
type PunnettWeights map[string]float64

// Cells returns the four weights in roll order, defaulting missing cells and
// falling back to an even grid when the weights do not sum to a positive total.
func (w PunnettWeights) Cells() ([4]float64, float64) {
	var cells [4]float64
	for i, key := range [4]string{Roll1, Roll2, Roll3, Roll4} {
		v, ok := w[key]
		if !ok {
			v = DefaultCellWeight
		}
		cells[i] = v
	}

	total := floats.Sum(cells[:])
	if total <= 0 {
		cells = [4]float64{DefaultCellWeight, DefaultCellWeight, DefaultCellWeight, DefaultCellWeight}
		total = 4 * DefaultCellWeight
	}
	return cells, total
}

// Validate rejects unknown cells and negative weights.
func (w PunnettWeights) Validate() error {
	for key, v := range w {
		switch key {
		case Roll1, Roll2, Roll3, Roll4:
		default:
			return fmt.Errorf("unknown punnett cell %q, expected roll1..roll4", key)
		}
		if v < 0 {
			return fmt.Errorf("punnett cell %s has negative weight %v", key, v)
		}
	}
	return nil
}

// Class is a parent's category for a percentage gene.
type Class string

const (
	ClassDom  Class = "dom"
	ClassRec  Class = "rec"
	ClassNone Class = "none"
)

// Band maps outcome labels to relative weights. Valid labels are dom, rec and none.
type Band map[Class]float64

// fallbackBand is used when a class pair has no band or its weights are degenerate.
func fallbackBand() Band {
	return Band{ClassNone: 100}
}

// labels returns the band's labels in canonical order (dom, rec, none) followed by
// any unknown labels sorted lexically.
func (b Band) labels() []Class {
	labels := make([]Class, 0, len(b))
	for l := range b {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := labelRank(labels[i]), labelRank(labels[j])
		if ri != rj {
			return ri < rj
		}
		return labels[i] < labels[j]
	})
	return labels
}

// total sums the weights in label order.
func (b Band) total() float64 {
	labels := b.labels()
	weights := make([]float64, len(labels))
	for i, l := range labels {
		weights[i] = b[l]
	}
	return floats.Sum(weights)
}

func labelRank(c Class) int {
	switch c {
	case ClassDom:
		return 0
	case ClassRec:
		return 1
	case ClassNone:
		return 2
	default:
		return 3
	}
}

// PercentageOdds maps a class-pair key such as "domXrec" to its band.
type PercentageOdds map[string]Band

// PairKey builds the PercentageOdds key for a sire/dam class pair.
func PairKey(sire, dam Class) string {
	return string(sire) + "X" + string(dam)
}

// IsPairKey reports whether key names a sire/dam class pair.
func IsPairKey(key string) bool {
	for _, s := range []Class{ClassDom, ClassRec, ClassNone} {
		for _, d := range []Class{ClassDom, ClassRec, ClassNone} {
			if key == PairKey(s, d) {
				return true
			}
		}
	}
	return false
}

// Validate rejects unknown pair keys, unknown outcome labels and negative weights.
// Bands whose weights sum to zero are allowed and resolve to none at breeding time.
func (o PercentageOdds) Validate() error {
	for key, band := range o {
		if !IsPairKey(key) {
			return fmt.Errorf("unknown class pair %q", key)
		}
		for label, w := range band {
			if labelRank(label) > 2 {
				return &Error{Kind: KindInvalidOutcomeLabel, Label: string(label)}
			}
			if w < 0 {
				return fmt.Errorf("band %s label %s has negative weight %v", key, label, w)
			}
		}
	}
	return nil
}

// OddsConfig carries the odds tables for both inheritance models.
type OddsConfig struct {
	Punnett    PunnettWeights `json:"punnett" yaml:"punnett"`
	Percentage PercentageOdds `json:"percentage" yaml:"percentage"`
}

// DefaultPunnettWeights returns the even 25/25/25/25 grid.
func DefaultPunnettWeights() PunnettWeights {
	return PunnettWeights{
		Roll1: DefaultCellWeight,
		Roll2: DefaultCellWeight,
		Roll3: DefaultCellWeight,
		Roll4: DefaultCellWeight,
	}
}

// DefaultPercentageOdds returns the standard band table for single-allele markers.
func DefaultPercentageOdds() PercentageOdds {
	return PercentageOdds{
		"domXdom":   {ClassDom: 100},
		"domXrec":   {ClassDom: 100},
		"domXnone":  {ClassRec: 50},
		"recXrec":   {ClassDom: 50, ClassRec: 50},
		"recXnone":  {ClassRec: 50, ClassNone: 50},
		"noneXnone": {ClassNone: 100},
	}
}

// DefaultOdds returns both default tables.
func DefaultOdds() OddsConfig {
	return OddsConfig{
		Punnett:    DefaultPunnettWeights(),
		Percentage: DefaultPercentageOdds(),
	}
}
