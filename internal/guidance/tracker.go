package guidance

// Tracker holds the active segment (wp1, wp2) on a path. Indices only move
// forward, and the final segment is held once wp2 is the last waypoint.
type Tracker struct {
	path    *Path
	gain    float64
	wp1     int
	bearing float64
}

// NewTracker starts on the segment nearest to pos.
func NewTracker(path *Path, pos Point, gain float64) *Tracker {
	if gain == 0 {
		gain = DefaultGain
	}
	t := &Tracker{path: path, gain: gain, wp1: path.Nearest(pos)}
	t.bearing = Compute(t.WP1().Point, t.WP2().Point, pos, gain, 0).PathBearing
	return t
}

func (t *Tracker) Path() *Path { return t.path }

// Index returns the path indices of wp1 and wp2.
func (t *Tracker) Index() (int, int) { return t.wp1, t.wp1 + 1 }

func (t *Tracker) WP1() Waypoint { return t.path.At(t.wp1) }
func (t *Tracker) WP2() Waypoint { return t.path.At(t.wp1 + 1) }

// AtEnd reports whether wp2 is the last waypoint of the path.
func (t *Tracker) AtEnd() bool { return t.wp1+2 >= t.path.Len() }

// Update advances by at most one segment and reports whether it did.
func (t *Tracker) Update(pos Point) bool {
	if t.AtEnd() || !ShouldAdvance(t.WP1().Point, t.WP2().Point, pos) {
		return false
	}
	t.wp1++
	return true
}

// Guidance evaluates the vector field of the active segment at pos.
func (t *Tracker) Guidance(pos Point) Result {
	res := Compute(t.WP1().Point, t.WP2().Point, pos, t.gain, t.bearing)
	t.bearing = res.PathBearing
	return res
}
