package profiler

// Category selects the accumulator a measurement folds into. The set is fixed.
type Category int

const (
	// LikelihoodLike covers log-density style evaluations.
	LikelihoodLike Category = iota
	// GradientLike covers gradient and directional-derivative evaluations.
	GradientLike

	numCategories
)

var categoryNames = [numCategories]string{
	LikelihoodLike: "likelihood",
	GradientLike:   "gradient",
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return "unknown"
	}
	return categoryNames[c]
}

// Categories returns every category in reporting order.
func Categories() []Category {
	out := make([]Category, numCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}
