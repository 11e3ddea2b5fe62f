// Package git runs the git binary on behalf of the filesystem adapter.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLockName is the lock file created in the work tree while a
// commit is in progress.
const DefaultLockName = ".lattice.lock"

// ErrLockTimeout is returned when the lock cannot be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for git lock")

// Client wraps git command execution with a file-based lock so that
// several processes sharing a work tree commit one at a time.
type Client struct {
	WorkDir     string
	Logger      *slog.Logger
	LockTimeout time.Duration
	lockPath    string
}

// NewClient creates a git client for workDir. An empty lockName uses
// DefaultLockName.
func NewClient(workDir, lockName string, logger *slog.Logger) *Client {
	if lockName == "" {
		lockName = DefaultLockName
	}
	return &Client{
		WorkDir:     workDir,
		Logger:      logger,
		LockTimeout: 30 * time.Second,
		lockPath:    lockName,
	}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo reports whether the work dir is the top of a git repository.
func (c *Client) IsRepo() bool {
	info, err := os.Stat(filepath.Join(c.WorkDir, ".git"))
	return err == nil && info.IsDir()
}

// Lock acquires the work tree lock, retrying until LockTimeout elapses.
// The returned function releases it.
func (c *Client) Lock() (func(), error) {
	full := filepath.Join(c.WorkDir, c.lockPath)
	deadline := time.Now().Add(c.LockTimeout)

	for {
		f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			f.Close()
			return func() {
				os.Remove(full)
			}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if c.LockTimeout > 0 && time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, full)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Run executes a raw git command in the work dir. It does not take the
// lock; callers that modify the index hold it via Lock.
func (c *Client) Run(args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}
	return strings.TrimSpace(output), nil
}

// Init creates a repository. Re-running it on an existing one is harmless.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// Add stages files.
func (c *Client) Add(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := c.Run(append([]string{"add"}, files...)...)
	return err
}

// Rm removes files from the work tree and the index.
func (c *Client) Rm(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := c.Run(append([]string{"rm", "-f", "--ignore-unmatch"}, files...)...)
	return err
}

// Commit records staged changes. Identity falls back to a local default so
// commits work on machines without a configured user.
func (c *Client) Commit(msg string) error {
	_, err := c.Run("-c", "user.name=lattice", "-c", "user.email=lattice@localhost", "commit", "--allow-empty", "-m", msg)
	return err
}

// Status returns the porcelain status of the repo.
func (c *Client) Status() (string, error) {
	return c.Run("status", "--porcelain")
}

// Revision is one commit touching a file.
type Revision struct {
	Hash    string
	When    time.Time
	Subject string
}

// Log returns up to limit commits that touched file, newest first.
func (c *Client) Log(file string, limit int) ([]Revision, error) {
	args := []string{"log", "--format=%H%x09%ct%x09%s"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	out, err := c.Run(append(args, "--", file)...)
	if err != nil {
		return nil, err
	}
	var revs []Revision
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		var sec int64
		if _, err := fmt.Sscan(parts[1], &sec); err != nil {
			continue
		}
		revs = append(revs, Revision{Hash: parts[0], When: time.Unix(sec, 0), Subject: parts[2]})
	}
	return revs, nil
}

// Show returns the content of file at revision rev.
func (c *Client) Show(rev, file string) ([]byte, error) {
	out, err := c.Run("show", rev+":"+filepath.ToSlash(file))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
