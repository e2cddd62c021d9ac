package mot

// solveAssignment pairs detections (rows) with tracks (columns).
// It returns row -> column, or -1 for unmatched rows. Pairs at Infeasible cost are never returned.
func solveAssignment(cost [][]float64, algorithm MatchingAlgorithm) []int {
	if len(cost) == 0 {
		return nil
	}
	if len(cost[0]) == 0 {
		return unassigned(len(cost))
	}
	switch algorithm {
	case MatchingAlgorithmGreedy:
		return greedyAssign(cost)
	case MatchingAlgorithmHungarianScore:
		return hungarianScoreAssign(cost)
	default:
		return hungarianAssign(cost)
	}
}

// greedyAssign takes the cheapest remaining feasible pair until none is left.
func greedyAssign(cost [][]float64) []int {
	result := unassigned(len(cost))
	h := make(distanceHeap, 0, len(cost)*len(cost[0]))
	for i, row := range cost {
		for j, c := range row {
			if c < Infeasible {
				h.Push(&candidatePair{detection: i, track: j, distance: c})
			}
		}
	}
	trackUsed := make([]bool, len(cost[0]))
	for h.Len() > 0 {
		pair := h.Pop()
		if result[pair.detection] >= 0 || trackUsed[pair.track] {
			continue
		}
		result[pair.detection] = pair.track
		trackUsed[pair.track] = true
	}
	return result
}

// hungarianScoreAssign maximises Σ 1/(1+cost) over the feasible pairs.
// Infeasible pairs and dummies score zero, exactly like leaving a row unmatched.
func hungarianScoreAssign(cost [][]float64) []int {
	c := squareMatrix(len(cost), len(cost[0]))
	for i := range cost {
		for j, v := range cost[i] {
			if v < Infeasible {
				c[i][j] = -1.0 / (1.0 + v)
			}
		}
	}
	return feasibleOnly(cost, kuhnMunkres(c))
}
