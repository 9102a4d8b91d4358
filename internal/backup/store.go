package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Store keeps git-versioned copies of config files before lockstep modifies
// or removes them, etckeeper style. Each snapshot is one commit, so the full
// history of a hardening run survives under the backup directory.
type Store struct {
	dir  string
	repo *git.Repository
}

// Open opens the backup store at dir, initialising a fresh repository when
// none exists yet.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("open backup store: %w", err)
		}
		repo, err = git.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("init backup store: %w", err)
		}
	}

	return &Store{dir: dir, repo: repo}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Snapshot records the current content of path. A missing source file is a
// no-op: there is nothing to preserve. An unchanged file commits nothing.
func (s *Store) Snapshot(path string, content []byte) error {
	rel := relPath(path)
	dest := filepath.Join(s.dir, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	if err := os.WriteFile(dest, content, 0o600); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	if _, err := worktree.Add(rel); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}

	_, err = worktree.Commit(fmt.Sprintf("snapshot %s", path), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "lockstep",
			Email: "lockstep@localhost",
			When:  time.Now(),
		},
	})
	if err != nil && !errors.Is(err, git.ErrEmptyCommit) {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}

	return nil
}

// Latest returns the most recently snapshotted content for path. The second
// return value reports whether a snapshot exists.
func (s *Store) Latest(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, relPath(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read snapshot of %s: %w", path, err)
	}
	return data, true, nil
}

// History returns the commit messages recorded for the store, newest first.
func (s *Store) History() ([]string, error) {
	head, err := s.repo.Head()
	if err != nil {
		return nil, nil
	}

	iter, err := s.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read backup history: %w", err)
	}
	defer iter.Close()

	var messages []string
	err = iter.ForEach(func(c *object.Commit) error {
		messages = append(messages, strings.TrimSpace(c.Message))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read backup history: %w", err)
	}
	return messages, nil
}

func relPath(path string) string {
	return strings.TrimPrefix(filepath.Clean(path), string(filepath.Separator))
}
