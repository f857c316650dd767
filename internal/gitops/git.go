// Package gitops wraps the git CLI operations subctl needs to deploy and
// update instance checkouts. The CommandExecutor interface abstracts command
// execution so tests can record and stub git invocations without running them.
package gitops

import (
	"net/url"
	"os/exec"
	"strconv"
	"strings"

	"github.com/moguard/subctl/internal/errors"
)

// -----------------------------------------------------------------------------
// Command Executor
// -----------------------------------------------------------------------------

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command and returns combined output.
	Run(dir string, name string, args ...string) ([]byte, error)

	// RunQuiet executes a command and returns only the error.
	RunQuiet(dir string, name string, args ...string) error
}

// CLICommandExecutor executes commands using os/exec.
type CLICommandExecutor struct{}

// NewCLICommandExecutor creates a new CLI command executor.
func NewCLICommandExecutor() *CLICommandExecutor {
	return &CLICommandExecutor{}
}

// Run executes a command and returns combined output.
func (e *CLICommandExecutor) Run(dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// RunQuiet executes a command and returns only the error.
func (e *CLICommandExecutor) RunQuiet(dir string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.Run()
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client defines the version-control operations the lifecycle manager needs.
type Client interface {
	// RemoteBranchExists reports whether branch exists on the remote.
	RemoteBranchExists(branch string) (bool, error)

	// Clone checks out branch into dir.
	Clone(branch, dir string) error

	// FetchAll fetches all refs from the remote into the checkout at dir.
	FetchAll(dir string) error

	// Checkout switches the checkout at dir to branch.
	Checkout(dir, branch string) error

	// DiscardChanges throws away local modifications in the checkout at dir.
	DiscardChanges(dir string) error

	// ResetToRemote hard-resets the checkout at dir to the remote tip of branch.
	ResetToRemote(dir, branch string) error
}

// CLIClient implements Client by shelling out to git. The deploy token, when
// set, is injected into the remote URL at call time and never persisted in
// the checkout's configuration.
type CLIClient struct {
	repoURL  string
	token    string
	depth    int
	executor CommandExecutor
}

// NewCLIClient creates a git client for the given repository URL.
// depth limits clone history; 0 clones the full history.
func NewCLIClient(repoURL, token string, depth int) *CLIClient {
	return &CLIClient{
		repoURL:  repoURL,
		token:    token,
		depth:    depth,
		executor: NewCLICommandExecutor(),
	}
}

// NewCLIClientWithExecutor creates a CLIClient with a custom executor.
// This is primarily useful for testing.
func NewCLIClientWithExecutor(repoURL, token string, depth int, executor CommandExecutor) *CLIClient {
	return &CLIClient{
		repoURL:  repoURL,
		token:    token,
		depth:    depth,
		executor: executor,
	}
}

// authenticatedURL returns the remote URL with the deploy token injected as
// userinfo. Non-https URLs (ssh remotes) are returned unchanged.
func (c *CLIClient) authenticatedURL() string {
	if c.token == "" {
		return c.repoURL
	}
	u, err := url.Parse(c.repoURL)
	if err != nil || u.Scheme != "https" {
		return c.repoURL
	}
	u.User = url.User(c.token)
	return u.String()
}

// RemoteBranchExists reports whether branch exists on the remote.
func (c *CLIClient) RemoteBranchExists(branch string) (bool, error) {
	output, err := c.executor.Run("", "git", "ls-remote", "--heads", c.authenticatedURL(), branch)
	if err != nil {
		return false, errors.NewGitError("failed to list remote branches", err).
			WithBranch(branch).
			WithGitOutput(string(output))
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// Clone checks out branch into dir.
func (c *CLIClient) Clone(branch, dir string) error {
	args := []string{"clone", "--branch", branch}
	if c.depth > 0 {
		args = append(args, "--depth", strconv.Itoa(c.depth))
	}
	args = append(args, c.authenticatedURL(), dir)

	output, err := c.executor.Run("", "git", args...)
	if err != nil {
		return errors.NewGitError("failed to clone repository", errors.ErrCloneFailed).
			WithBranch(branch).
			WithDir(dir).
			WithGitOutput(string(output))
	}
	return nil
}

// FetchAll fetches all refs from the remote into the checkout at dir.
func (c *CLIClient) FetchAll(dir string) error {
	output, err := c.executor.Run(dir, "git", "fetch", "--all", "--prune")
	if err != nil {
		return errors.NewGitError("failed to fetch", err).
			WithDir(dir).
			WithGitOutput(string(output))
	}
	return nil
}

// Checkout switches the checkout at dir to branch.
func (c *CLIClient) Checkout(dir, branch string) error {
	output, err := c.executor.Run(dir, "git", "checkout", branch)
	if err != nil {
		return errors.NewGitError("failed to checkout branch", err).
			WithBranch(branch).
			WithDir(dir).
			WithGitOutput(string(output))
	}
	return nil
}

// DiscardChanges throws away local modifications in the checkout at dir.
func (c *CLIClient) DiscardChanges(dir string) error {
	output, err := c.executor.Run(dir, "git", "reset", "--hard")
	if err != nil {
		return errors.NewGitError("failed to discard local changes", err).
			WithDir(dir).
			WithGitOutput(string(output))
	}
	return nil
}

// ResetToRemote hard-resets the checkout at dir to the remote tip of branch.
func (c *CLIClient) ResetToRemote(dir, branch string) error {
	output, err := c.executor.Run(dir, "git", "reset", "--hard", "origin/"+branch)
	if err != nil {
		return errors.NewGitError("failed to reset to remote branch", err).
			WithBranch(branch).
			WithDir(dir).
			WithGitOutput(string(output))
	}
	return nil
}

// Ensure CLIClient satisfies the interface at compile time.
var _ Client = (*CLIClient)(nil)
