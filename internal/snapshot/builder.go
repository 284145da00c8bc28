package snapshot

import (
	"fmt"
	"os"

	"github.com/quantmind-br/docsync-go/internal/utils"
)

// Function vars for testing
var (
	renameDir = os.Rename
)

// Builder stages a replacement directory tree next to the live one and
// swaps it into place with renames. The live tree is either fully
// replaced or left untouched.
type Builder struct {
	liveDir    string
	scratchDir string
	backupDir  string
	logger     *utils.Logger
}

// New creates a builder for the given live directory. The scratch and
// backup trees are siblings named <live>.tmp and <live>.bak.
func New(liveDir string, logger *utils.Logger) *Builder {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Builder{
		liveDir:    liveDir,
		scratchDir: liveDir + ".tmp",
		backupDir:  liveDir + ".bak",
		logger:     logger.WithComponent("snapshot"),
	}
}

// ScratchDir returns the staging directory path.
func (b *Builder) ScratchDir() string {
	return b.scratchDir
}

// Prepare clears any stale scratch tree and creates a fresh one,
// returning its path.
func (b *Builder) Prepare() (string, error) {
	if err := os.RemoveAll(b.scratchDir); err != nil {
		return "", fmt.Errorf("clear stale scratch %s: %w", b.scratchDir, err)
	}
	if err := os.MkdirAll(b.scratchDir, 0755); err != nil {
		return "", fmt.Errorf("create scratch %s: %w", b.scratchDir, err)
	}
	return b.scratchDir, nil
}

// Commit swaps the scratch tree into place. The old live tree is moved
// aside as a backup first; if the swap fails the backup is restored and
// an error returned. On success the backup is discarded.
func (b *Builder) Commit() error {
	if !utils.Exists(b.scratchDir) {
		return fmt.Errorf("scratch %s does not exist, nothing to commit", b.scratchDir)
	}

	if err := os.RemoveAll(b.backupDir); err != nil {
		return fmt.Errorf("clear stale backup %s: %w", b.backupDir, err)
	}

	hadOld := utils.Exists(b.liveDir)
	if hadOld {
		if err := renameDir(b.liveDir, b.backupDir); err != nil {
			return fmt.Errorf("move live aside: %w", err)
		}
	}

	if err := renameDir(b.scratchDir, b.liveDir); err != nil {
		b.rollback(hadOld)
		return fmt.Errorf("swap snapshot into place: %w", err)
	}

	if err := os.RemoveAll(b.backupDir); err != nil {
		b.logger.Warn().
			Str("backup", b.backupDir).
			Err(err).
			Msg("failed to remove backup after commit")
	}

	return nil
}

// rollback restores the previous live tree after a failed swap.
func (b *Builder) rollback(hadOld bool) {
	if utils.Exists(b.liveDir) {
		if err := os.RemoveAll(b.liveDir); err != nil {
			b.logger.Error().Err(err).Msg("rollback: failed to remove partial live tree")
		}
	}
	if hadOld && utils.Exists(b.backupDir) && !utils.Exists(b.liveDir) {
		if err := renameDir(b.backupDir, b.liveDir); err != nil {
			b.logger.Error().Err(err).Msg("rollback: failed to restore backup")
		}
	}
	if err := os.RemoveAll(b.scratchDir); err != nil {
		b.logger.Warn().Err(err).Msg("rollback: failed to remove scratch")
	}
}

// Cleanup discards the scratch tree. Safe to call after Commit.
func (b *Builder) Cleanup() {
	if err := os.RemoveAll(b.scratchDir); err != nil {
		b.logger.Warn().
			Str("scratch", b.scratchDir).
			Err(err).
			Msg("failed to remove scratch")
	}
}
