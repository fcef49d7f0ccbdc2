// SPDX-License-Identifier: MPL-2.0

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// tokenEnvVars are consulted in order for HTTPS clone credentials.
var tokenEnvVars = []string{"GITHUB_TOKEN", "GIT_TOKEN"}

type (
	// CloneOptions describe a clone request.
	CloneOptions struct {
		URL string
		Dir string
		// Branch is checked out instead of the remote HEAD when set.
		Branch string
		// Depth limits history; 0 clones everything.
		Depth int
	}

	// Cloner fetches a repository into a local directory.
	Cloner interface {
		Clone(ctx context.Context, opts CloneOptions) error
	}

	// GitCloner clones with go-git, so no git binary is needed.
	GitCloner struct {
		// Progress receives the remote's progress output (optional).
		Progress io.Writer
		// LookupEnv reads credentials; nil means os.LookupEnv.
		LookupEnv func(string) (string, bool)
	}
)

// Clone performs a single-branch clone. A failed clone leaves no directory
// behind.
func (g *GitCloner) Clone(ctx context.Context, opts CloneOptions) error {
	if err := os.MkdirAll(filepath.Dir(opts.Dir), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	auth, err := g.auth(opts.URL)
	if err != nil {
		return err
	}

	co := &git.CloneOptions{
		URL:          opts.URL,
		Auth:         auth,
		SingleBranch: true,
		Depth:        opts.Depth,
		Progress:     g.Progress,
	}
	if opts.Branch != "" {
		co.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
	}

	if _, err := git.PlainCloneContext(ctx, opts.Dir, false, co); err != nil {
		_ = os.RemoveAll(opts.Dir)
		return fmt.Errorf("failed to clone %s: %w", opts.URL, err)
	}
	return nil
}

// auth picks SSH keys for SSH remotes and a token for HTTPS ones. Public
// repositories need neither.
func (g *GitCloner) auth(url string) (transport.AuthMethod, error) {
	if isSSHURL(url) {
		return sshAuth()
	}

	lookup := g.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range tokenEnvVars {
		if token, ok := lookup(name); ok && token != "" {
			return &http.BasicAuth{Username: "x-access-token", Password: token}, nil
		}
	}
	return nil, nil
}

func sshAuth() (transport.AuthMethod, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil //nolint:nilerr // fall back to the SSH agent default
	}
	for _, key := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		path := filepath.Join(home, ".ssh", key)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		auth, err := ssh.NewPublicKeysFromFile("git", path, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load SSH key %s: %w", path, err)
		}
		return auth, nil
	}
	return nil, nil
}

func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") || strings.HasPrefix(url, "ssh://")
}
