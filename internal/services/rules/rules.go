// Package rules holds the domino matching and orientation rule.
//
// Matching is deliberately permissive: two dominoes match when they share
// any pip value, regardless of which faces are exposed. Orientation only
// decides how a placed domino is drawn so the seam lines up.
package rules

import "github.com/mcoot/dominotrain/internal/model"

// Matches reports whether a and b share a pip value. Symmetric.
func Matches(a, b model.Domino) bool {
	return a.Top == b.Top || a.Top == b.Bottom || a.Bottom == b.Top || a.Bottom == b.Bottom
}

// ExposedFace returns the face a placed domino presents to the next one:
// the bottom, or the top when the domino is flipped.
func ExposedFace(d model.Domino, flipped bool) int {
	if flipped {
		return d.Top
	}
	return d.Bottom
}

// LeadingFace returns the face a candidate presents towards the chain:
// the top, or the bottom when the candidate is already flipped.
func LeadingFace(d model.Domino, flipped bool) int {
	if flipped {
		return d.Bottom
	}
	return d.Top
}

// NeedsFlip reports whether the candidate must be mirrored so its leading
// face meets the destination's exposed face. Callers check Matches first.
func NeedsFlip(candidate model.Domino, candidateFlipped bool, destinationExposedFace int) bool {
	return LeadingFace(candidate, candidateFlipped) != destinationExposedFace
}

// Orient checks a candidate against a placed destination and returns whether
// it may attach and whether it must be flipped to do so.
func Orient(candidate, destination model.Domino, destinationFlipped bool) (matches bool, flip bool) {
	if !Matches(candidate, destination) {
		return false, false
	}
	return true, NeedsFlip(candidate, false, ExposedFace(destination, destinationFlipped))
}
