package layout

// CheckCollisions reports whether any two non-decoration elements overlap.
//
// The test is pairwise axis-aligned bounding boxes and short-circuits on the
// first hit; it does not enumerate collisions or resolve them. The result is
// advisory — callers retry with a different seed key or template.
//
// Rotation is ignored: a rotated element is tested as its unrotated box.
// This under-detects overlaps of rotated elements but matches the behavior
// every shipped book was laid out with.
func CheckCollisions(l PageLayout) bool {
	elems := make([]*Element, 0, len(l.Elements))
	for i := range l.Elements {
		if !l.Elements[i].IsDecoration() {
			elems = append(elems, &l.Elements[i])
		}
	}

	for i := 0; i < len(elems); i++ {
		for j := i + 1; j < len(elems); j++ {
			if IsColliding(elems[i], elems[j]) {
				return true
			}
		}
	}
	return false
}

// IsColliding tests two elements for axis-aligned bounding-box overlap.
// Boxes are defined by center ± half-extent. The test is symmetric.
func IsColliding(a, b *Element) bool {
	aLeft, aRight := a.X-a.Width/2, a.X+a.Width/2
	aTop, aBottom := a.Y-a.Height/2, a.Y+a.Height/2
	bLeft, bRight := b.X-b.Width/2, b.X+b.Width/2
	bTop, bBottom := b.Y-b.Height/2, b.Y+b.Height/2

	separated := aRight < bLeft || aLeft > bRight || aBottom < bTop || aTop > bBottom
	return !separated
}
