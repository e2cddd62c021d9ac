package mot

import "math"

// Infeasible is the cost of a pair that must never be matched.
const Infeasible = 1e18

// hungarianAssign implements the Kuhn–Munkres (Hungarian) algorithm for optimal
// detection-to-track assignment in O(n³) time.
//
// Returns assignments[i] = j meaning detection i → track j, or -1 if
// detection i is unassigned. Costs ≥ Infeasible are treated as forbidden.
// Among the matchings with the most feasible pairs the cheapest one is returned.
func hungarianAssign(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	m := len(cost[0])
	if m == 0 {
		return unassigned(n)
	}

	// Forbidden pairs cost more than any set of feasible pairs together.
	// A finite penalty keeps the potentials on the scale of the real costs.
	penalty := 1.0
	for i := range cost {
		for _, v := range cost[i] {
			if v < Infeasible {
				penalty += math.Abs(v)
			}
		}
	}
	c := squareMatrix(n, m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if cost[i][j] < Infeasible {
				c[i][j] = cost[i][j]
			} else {
				c[i][j] = penalty
			}
		}
	}
	return feasibleOnly(cost, kuhnMunkres(c))
}

// squareMatrix returns a zero max(n,m) x max(n,m) matrix. Zero rows and columns
// act as dummies for the unmatched side.
func squareMatrix(n, m int) [][]float64 {
	dim := max(n, m)
	c := make([][]float64, dim)
	for i := range c {
		c[i] = make([]float64, dim)
	}
	return c
}

// feasibleOnly maps a square row assignment back onto cost, dropping dummy
// columns and forbidden pairs.
func feasibleOnly(cost [][]float64, rowAssign []int) []int {
	m := len(cost[0])
	result := unassigned(len(cost))
	for i := range result {
		col := rowAssign[i]
		if col >= 0 && col < m && cost[i][col] < Infeasible {
			result[i] = col
		}
	}
	return result
}

// kuhnMunkres solves a finite square assignment problem and returns row -> column.
func kuhnMunkres(c [][]float64) []int {
	dim := len(c)
	// Kuhn-Munkres with potentials, 1-indexed with a virtual column 0.
	const inf = math.MaxFloat64 / 2

	u := make([]float64, dim+1) // Row potentials
	v := make([]float64, dim+1) // Column potentials
	p := make([]int, dim+1)     // p[j] = row assigned to column j
	way := make([]int, dim+1)   // way[j] = previous column in augmenting path
	minv := make([]float64, dim+1)
	used := make([]bool, dim+1)

	for i := 1; i <= dim; i++ {
		p[0] = i
		j0 := 0
		for j := 1; j <= dim; j++ {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= dim; j++ {
				if used[j] {
					continue
				}
				cur := c[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			if j1 < 0 {
				break
			}
			for j := 0; j <= dim; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	rowAssign := unassigned(dim)
	for j := 1; j <= dim; j++ {
		if p[j] > 0 && p[j] <= dim {
			rowAssign[p[j]-1] = j - 1
		}
	}
	return rowAssign
}

func unassigned(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = -1
	}
	return result
}
