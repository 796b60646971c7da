package watcher

import (
	"path/filepath"
	"sort"

	"github.com/raoulx24/backup-warden/internal/snapshot"
)

// hashFunc returns the content digest of the entry at a relative path.
type hashFunc func(rel string) ([32]byte, error)

// detect compares two scans and returns the changes, sorted by path. When hash
// is non-nil, files whose size or mtime moved but whose content did not are
// treated as metadata noise. next is updated in place with known digests.
// Directory mtime changes are not reported; their children are.
func detect(prev, next map[string]snapshot.Artifact, hash hashFunc) []Event {
	var events []Event

	for rel, cur := range next {
		old, ok := prev[rel]
		switch {
		case !ok:
			if hash != nil && !cur.IsDir {
				cur = withDigest(cur, hash)
				next[rel] = cur
			}
			events = append(events, Event{Op: Create, Path: rel})

		case old.IsDir != cur.IsDir:
			if hash != nil && !cur.IsDir {
				next[rel] = withDigest(cur, hash)
			}
			events = append(events, Event{Op: Remove, Path: rel}, Event{Op: Create, Path: rel})

		case cur.IsDir:

		case old.SameStat(cur):
			cur.Digest, cur.HasDigest = old.Digest, old.HasDigest
			next[rel] = cur

		case hash == nil:
			events = append(events, Event{Op: Modify, Path: rel})

		default:
			cur = withDigest(cur, hash)
			next[rel] = cur
			if old.HasDigest && cur.HasDigest && old.Digest == cur.Digest {
				continue
			}
			events = append(events, Event{Op: Modify, Path: rel})
		}
	}

	for rel := range prev {
		if _, ok := next[rel]; !ok {
			events = append(events, Event{Op: Remove, Path: rel})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

func withDigest(a snapshot.Artifact, hash hashFunc) snapshot.Artifact {
	sum, err := hash(a.Path)
	if err != nil {
		// Unreadable right now; the next change will hash it again.
		a.HasDigest = false
		return a
	}
	a.Digest, a.HasDigest = sum, true
	return a
}

// hasher hashes files below root.
func hasher(root string) hashFunc {
	return func(rel string) ([32]byte, error) {
		return digest(filepath.Join(root, filepath.FromSlash(rel)))
	}
}
