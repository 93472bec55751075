package residual

import "sort"

// treeNode is one node of a depth-limited regression tree. Leaves carry the
// mean target of their samples; internal nodes split on feature <= threshold.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

// split candidate bookkeeping
type splitResult struct {
	feature   int
	threshold float64
	gain      float64
	leftIdx   []int
	rightIdx  []int
}

// buildTree grows a regression tree over the given sample indices.
// importance accumulates each split's squared-error reduction per feature.
func buildTree(x [][]float64, y []float64, idx []int, depth int, importance []float64) *treeNode {
	mean, sse := meanSSE(y, idx)
	if depth <= 0 || len(idx) < 2 || sse == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	best := bestSplit(x, y, idx, sse)
	if best == nil {
		return &treeNode{leaf: true, value: mean}
	}

	importance[best.feature] += best.gain
	return &treeNode{
		feature:   best.feature,
		threshold: best.threshold,
		left:      buildTree(x, y, best.leftIdx, depth-1, importance),
		right:     buildTree(x, y, best.rightIdx, depth-1, importance),
	}
}

// bestSplit scans every feature for the threshold that most reduces the
// summed squared error. Returns nil when no split improves on the parent.
func bestSplit(x [][]float64, y []float64, idx []int, parentSSE float64) *splitResult {
	var best *splitResult
	order := make([]int, len(idx))

	for f := 0; f < len(x[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return x[order[a]][f] < x[order[b]][f]
		})

		// Prefix sums over the sorted order let each candidate split be
		// scored in constant time
		var sumL, sumSqL float64
		var sumR, sumSqR float64
		for _, i := range order {
			sumR += y[i]
			sumSqR += y[i] * y[i]
		}

		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			sumL += y[i]
			sumSqL += y[i] * y[i]
			sumR -= y[i]
			sumSqR -= y[i] * y[i]

			// Cannot split between equal feature values
			if x[order[pos]][f] == x[order[pos+1]][f] {
				continue
			}

			nL := float64(pos + 1)
			nR := float64(len(order) - pos - 1)
			sse := (sumSqL - sumL*sumL/nL) + (sumSqR - sumR*sumR/nR)
			gain := parentSSE - sse
			if best == nil || gain > best.gain {
				threshold := (x[order[pos]][f] + x[order[pos+1]][f]) / 2
				best = &splitResult{
					feature:   f,
					threshold: threshold,
					gain:      gain,
					leftIdx:   append([]int(nil), order[:pos+1]...),
					rightIdx:  append([]int(nil), order[pos+1:]...),
				}
			}
		}
	}

	if best == nil || best.gain <= 0 {
		return nil
	}
	return best
}

func meanSSE(y []float64, idx []int) (mean, sse float64) {
	for _, i := range idx {
		mean += y[i]
	}
	mean /= float64(len(idx))
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}

// predict walks the tree for one scaled feature row
func (n *treeNode) predict(row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}
