package genetics

// PunnettOutcomes crosses two parsed genotypes through the weighted 2x2 grid. It
// always returns four outcomes in roll order; duplicates are not merged here.
func PunnettOutcomes(sire, dam AllelePair, dominance []string, weights PunnettWeights) []Outcome {
	cells, total := weights.Cells()

	pairs := [4]AllelePair{
		{sire[0], dam[0]},
		{sire[0], dam[1]},
		{sire[1], dam[0]},
		{sire[1], dam[1]},
	}

	outcomes := make([]Outcome, 4)
	for i, p := range pairs {
		outcomes[i] = Outcome{
			Genotype:    FormatGenotype(p, dominance),
			Probability: cells[i] / total,
		}
	}
	return outcomes
}
