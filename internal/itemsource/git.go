package itemsource

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// DetectType classifies a source path as "git" or "local".
func DetectType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return "git"
	}
	return "local"
}

// cloneOrPull makes localPath an up-to-date checkout of the repository
// at repoURL: a fresh clone if the path doesn't exist yet, otherwise a
// pull from origin.
func cloneOrPull(repoURL, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		slog.Info("cloning word-list repository", "url", repoURL, "path", localPath)
		if _, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: repoURL}); err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
	}
	slog.Info("pulling word-list repository", "path", localPath)
	if err := worktree.Pull(&git.PullOptions{RemoteName: "origin"}); err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
	}
	return nil
}

// localPathFor maps a git URL to a checkout directory under baseDir,
// e.g. https://github.com/a/b.git -> baseDir/github.com/a/b. It also
// understands scp-style URLs (git@host:a/b.git).
func localPathFor(baseDir, repoURL string) (string, error) {
	parsed, err := url.Parse(repoURL)
	if err == nil && (parsed.Scheme == "https" || parsed.Scheme == "http") {
		return filepath.Join(baseDir, parsed.Host, strings.TrimSuffix(parsed.Path, ".git")), nil
	}

	if at := strings.Index(repoURL, "@"); at >= 0 {
		if colon := strings.Index(repoURL[at:], ":"); colon >= 0 {
			host := repoURL[at+1 : at+colon]
			repoPath := strings.TrimSuffix(repoURL[at+colon+1:], ".git")
			return filepath.Join(baseDir, host, repoPath), nil
		}
	}
	return "", fmt.Errorf("could not parse git URL: %s", repoURL)
}
