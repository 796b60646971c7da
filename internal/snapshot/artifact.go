package snapshot

import (
	"time"

	"github.com/raoulx24/backup-warden/internal/fs"
)

// Artifact describes a single entry of the watched tree.
type Artifact struct {
	Path    string // relative to the watch folder, slash separated
	IsDir   bool
	Size    int64
	ModTime time.Time
	// Digest is the content hash; zero until computed.
	Digest    [32]byte
	HasDigest bool
}

// FromStat constructs an Artifact from stat data that followed links.
func FromStat(rel string, info fs.FileInfo) Artifact {
	return Artifact{
		Path:    rel,
		IsDir:   info.IsDir,
		ModTime: info.MTime,
		Size:    info.Size,
	}
}

// SameStat reports whether size and modification time are unchanged.
func (a Artifact) SameStat(b Artifact) bool {
	return a.IsDir == b.IsDir && a.Size == b.Size && a.ModTime.Equal(b.ModTime)
}
