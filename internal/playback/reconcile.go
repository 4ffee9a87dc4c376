package playback

// Reconcile recomputes a valid position after the snapshot shrank beneath
// the player, typically after the current story was deleted. The old author
// index is clamped into the new snapshot; if the clamped group still has
// stories the player lands on its first story, otherwise the neighboring
// group before it, then the one after. The second return is false when the
// new snapshot has nothing left to play (terminal).
func Reconcile(old Position, snap Snapshot) (Position, bool) {
	if len(snap) == 0 {
		return Position{}, false
	}

	author := old.Author
	if author > len(snap)-1 {
		author = len(snap) - 1
	}
	if author < 0 {
		author = 0
	}

	if len(snap[author].Stories) > 0 {
		return Position{Author: author, Story: 0}, true
	}
	if author > 0 {
		return Position{Author: author - 1, Story: 0}, true
	}
	if author+1 < len(snap) {
		return Position{Author: author + 1, Story: 0}, true
	}
	return Position{}, false
}
