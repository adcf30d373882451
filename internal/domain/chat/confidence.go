package chat

// Confidence maps retrieval distances (L2, lower is more similar) to a
// display percentage in [0,100]. The breakpoints and coefficients are
// tuned against the production corpus and must not be reshaped: the
// near-exact override deliberately runs after the branch math so that
// very close matches always present as 100.
func Confidence(distances []float64) int {
	avg := 1.0
	if len(distances) > 0 {
		sum := 0.0
		for _, d := range distances {
			sum += d
		}
		avg = sum / float64(len(distances))
	}

	var confidence int
	switch {
	case avg < 0.7:
		confidence = int(100 - avg*10)
		if confidence > 100 {
			confidence = 100
		}
	case avg < 1.1:
		confidence = int(95 - (avg-0.7)*100)
		if confidence < 75 {
			confidence = 75
		}
	default:
		confidence = int(70 - (avg-1.1)*50)
		if confidence < 30 {
			confidence = 30
		}
	}

	if avg < 0.5 {
		confidence = 100
	}
	return confidence
}
