package todo

// Merge applies patch on top of base and returns the result. Every top-level
// key of patch replaces the value in base wholesale; nested objects are not
// merged recursively. Keys missing from patch keep their base value. Neither
// argument is modified.
func Merge(base, patch Todo) Todo {
	out := make(Todo, len(base)+len(patch))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}
