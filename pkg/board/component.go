package board

// Component is one placed part from a pick-and-place file. Components are
// immutable values; Designator is unique across a component list.
type Component struct {
	Designator  string  `json:"designator"`
	Comment     string  `json:"comment"`
	Face        Face    `json:"face"`
	Footprint   string  `json:"footprint,omitempty"`
	X           float64 `json:"x_mm"`
	Y           float64 `json:"y_mm"`
	Rotation    float64 `json:"rotation_deg"`
	Description string  `json:"description,omitempty"`
}

// Index maps designators to components. Later duplicates overwrite earlier
// ones; pick-and-place exports never repeat a designator.
func Index(components []Component) map[string]Component {
	idx := make(map[string]Component, len(components))
	for _, c := range components {
		idx[c.Designator] = c
	}
	return idx
}

// CountByFace returns the number of components on each face.
func CountByFace(components []Component) (top, bottom int) {
	for _, c := range components {
		if c.Face == Bottom {
			bottom++
		} else {
			top++
		}
	}
	return top, bottom
}
