package playback

// Next computes the position following pos in the snapshot: the next story
// of the same author, else the first story of the next author. The second
// return is false when pos is the last story of the last author (terminal:
// playback ends).
func Next(pos Position, snap Snapshot) (Position, bool) {
	if pos.Story+1 < len(snap[pos.Author].Stories) {
		return Position{Author: pos.Author, Story: pos.Story + 1}, true
	}
	if pos.Author+1 < len(snap) {
		return Position{Author: pos.Author + 1, Story: 0}, true
	}
	return pos, false
}

// Prev computes the position preceding pos in the snapshot: the previous
// story of the same author, else the last story of the previous author.
// The second return is false when pos is already the very first story
// (boundary: no-op).
func Prev(pos Position, snap Snapshot) (Position, bool) {
	if pos.Story > 0 {
		return Position{Author: pos.Author, Story: pos.Story - 1}, true
	}
	if pos.Author > 0 {
		prev := pos.Author - 1
		return Position{Author: prev, Story: len(snap[prev].Stories) - 1}, true
	}
	return pos, false
}
