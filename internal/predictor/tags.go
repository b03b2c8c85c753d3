package predictor

// PredictTags assigns one tag per model tag layer to every span, by argmax
// over the layer vocabulary. Evidence is the token surface plus the runes
// immediately left and right of the span (up to the layer's context length).
// Ties and unknown tokens resolve to the lowest vocabulary index, keeping
// output deterministic.
func (p *Predictor) PredictTags(rs []rune, spans []Span) [][]string {
	layers := p.model.TagLayers
	out := make([][]string, len(spans))
	if len(layers) == 0 {
		return out
	}
	for si, sp := range spans {
		row := make([]string, len(layers))
		surface := string(rs[sp.Start:sp.End])
		for li, layer := range layers {
			scores := make([]int32, len(layer.Vocab))
			addScores(scores, layer.Surface[surface])

			lstart := sp.Start - layer.ContextLen
			if lstart < 0 {
				lstart = 0
			}
			if lstart < sp.Start {
				addScores(scores, layer.Left[string(rs[lstart:sp.Start])])
			}

			rend := sp.End + layer.ContextLen
			if rend > len(rs) {
				rend = len(rs)
			}
			if rend > sp.End {
				addScores(scores, layer.Right[string(rs[sp.End:rend])])
			}

			best := 0
			for j := 1; j < len(scores); j++ {
				if scores[j] > scores[best] {
					best = j
				}
			}
			row[li] = layer.Vocab[best]
		}
		out[si] = row
	}
	return out
}

func addScores(dst []int32, src []int32) {
	for i, v := range src {
		dst[i] += v
	}
}
