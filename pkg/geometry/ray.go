package geometry

import "math"

const (
	// rayReach is how far a leader ray is extended when searching for a
	// boundary crossing. Scene coordinates are image pixels, so this
	// comfortably exceeds any plan image dimension.
	rayReach = 10000.0

	// degenerateSpan is the manhattan distance under which origin and
	// target are treated as coincident.
	degenerateSpan = 2.0

	dirEpsilon = 1e-6

	// selfHitEpsilon rejects crossings at the ray origin itself: an anchor
	// sitting on the outline must attach to the far boundary, not to its
	// own position.
	selfHitEpsilon = 1e-6
)

// LeaderDirection builds the direction vector for a leader ray from origin
// toward target. When the two points nearly coincide the bounding-box center
// is used as the target instead. Returns false if no usable direction exists.
func LeaderDirection(origin, target, bboxCenter Point2D) (Point2D, bool) {
	dir := target.Sub(origin)
	if math.Abs(dir.X)+math.Abs(dir.Y) < degenerateSpan {
		dir = bboxCenter.Sub(origin)
	}
	if math.Hypot(dir.X, dir.Y) < dirEpsilon {
		return Point2D{}, false
	}
	return dir, true
}

// RayOutlineIntersection casts a ray from origin along dir against a set of
// closed polylines and returns the nearest crossing point. Returns false when
// the ray misses every edge.
func RayOutlineIntersection(origin, dir Point2D, outlines [][]Point2D) (Point2D, bool) {
	length := math.Hypot(dir.X, dir.Y)
	if length < dirEpsilon {
		return Point2D{}, false
	}
	end := Point2D{
		X: origin.X + dir.X/length*rayReach,
		Y: origin.Y + dir.Y/length*rayReach,
	}

	var (
		best     Point2D
		bestDist = math.Inf(1)
		found    bool
	)
	for _, ring := range outlines {
		n := len(ring)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			a := ring[i]
			b := ring[(i+1)%n]
			hit, ok := segmentIntersection(origin, end, a, b)
			if !ok {
				continue
			}
			d := origin.Distance(hit)
			if d < selfHitEpsilon {
				continue
			}
			if d < bestDist {
				bestDist = d
				best = hit
				found = true
			}
		}
	}
	return best, found
}

// segmentIntersection computes the intersection of bounded segments p1-p2 and
// p3-p4. Unlike lineIntersection it requires the crossing to lie within both
// segments.
func segmentIntersection(p1, p2, p3, p4 Point2D) (Point2D, bool) {
	d1 := p2.Sub(p1)
	d2 := p4.Sub(p3)

	denom := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(denom) < 1e-10 {
		return Point2D{}, false
	}

	diff := p3.Sub(p1)
	t := (diff.X*d2.Y - diff.Y*d2.X) / denom
	u := (diff.X*d1.Y - diff.Y*d1.X) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point2D{}, false
	}

	return Point2D{X: p1.X + t*d1.X, Y: p1.Y + t*d1.Y}, true
}

// FlattenCubic flattens a cubic bezier segment into n line segments,
// returning n+1 points including both endpoints.
func FlattenCubic(p0, c1, c2, p1 Point2D, n int) []Point2D {
	if n < 1 {
		n = 1
	}
	pts := make([]Point2D, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		pts[i] = Point2D{
			X: a*p0.X + b*c1.X + c*c2.X + d*p1.X,
			Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p1.Y,
		}
	}
	return pts
}

// FlattenQuad flattens a quadratic bezier segment into n line segments,
// returning n+1 points including both endpoints. Used to approximate curved
// mark outlines for ray casting.
func FlattenQuad(p0, ctrl, p1 Point2D, n int) []Point2D {
	if n < 1 {
		n = 1
	}
	pts := make([]Point2D, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		pts[i] = Point2D{
			X: mt*mt*p0.X + 2*mt*t*ctrl.X + t*t*p1.X,
			Y: mt*mt*p0.Y + 2*mt*t*ctrl.Y + t*t*p1.Y,
		}
	}
	return pts
}
