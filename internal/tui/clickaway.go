package tui

// Rect is a screen region in cells. X and Y are inclusive, W and H are sizes.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// OutsideClickRegistry tracks open popovers that close when the user clicks elsewhere.
// A popover registers when it opens and unregisters when it closes; only registered
// popovers take part in click dispatch.
type OutsideClickRegistry struct {
	regions map[string]Rect
	order   []string
}

// NewOutsideClickRegistry returns an empty registry.
func NewOutsideClickRegistry() *OutsideClickRegistry {
	return &OutsideClickRegistry{regions: make(map[string]Rect)}
}

// Register adds or moves the listener for id.
func (r *OutsideClickRegistry) Register(id string, area Rect) {
	if _, ok := r.regions[id]; !ok {
		r.order = append(r.order, id)
	}
	r.regions[id] = area
}

// Unregister removes the listener for id. Unknown ids are ignored.
func (r *OutsideClickRegistry) Unregister(id string) {
	if _, ok := r.regions[id]; !ok {
		return
	}
	delete(r.regions, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Registered reports whether id has a listener.
func (r *OutsideClickRegistry) Registered(id string) bool {
	_, ok := r.regions[id]
	return ok
}

// Len returns the number of listeners.
func (r *OutsideClickRegistry) Len() int { return len(r.regions) }

// Dispatch routes a click. consumed is true when the click landed inside a registered
// popover; outside lists every popover the click missed, in registration order.
func (r *OutsideClickRegistry) Dispatch(x, y int) (consumed bool, outside []string) {
	for _, id := range r.order {
		if r.regions[id].Contains(x, y) {
			consumed = true
			continue
		}
		outside = append(outside, id)
	}
	return consumed, outside
}
