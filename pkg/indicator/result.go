package indicator

// Result holds the named output series of one indicator call. All series
// share the input length; insertion order is preserved for stable
// serialization. The engine keeps no reference to a Result after returning
// it.
type Result struct {
	names []string
	data  map[string][]float64
}

func newResult() *Result {
	return &Result{data: make(map[string][]float64)}
}

func (r *Result) add(name string, values []float64) *Result {
	if _, ok := r.data[name]; !ok {
		r.names = append(r.names, name)
	}
	r.data[name] = values
	return r
}

// Get returns the series registered under name.
func (r *Result) Get(name string) ([]float64, bool) {
	values, ok := r.data[name]
	return values, ok
}

// Names returns the output names in insertion order.
func (r *Result) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the length of the output series.
func (r *Result) Len() int {
	if len(r.names) == 0 {
		return 0
	}
	return len(r.data[r.names[0]])
}
