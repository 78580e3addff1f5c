package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"bastion-hq/palisade/pkg/config"
	"bastion-hq/palisade/pkg/fasttrack"
)

// GitSource loads the intake template from a Git repository and polls the
// remote for changes. Every template version is a commit, which gives the
// deployment an audit trail of who changed the intake form and when, plus
// the ability to roll back to a known-good version.
type GitSource struct {
	cfg       *config.GitTemplateConfig
	localPath string
	auth      AuthProvider
	logger    *slog.Logger

	mu          sync.RWMutex
	repo        *gogit.Repository
	lastGoodSHA string
	running     bool
	stopCh      chan struct{}
	metrics     SourceMetrics
}

// NewGitSource creates a Git-backed template source.
// The config parameter must be non-nil and contain valid Git configuration.
// Returns an error if authentication provider creation fails.
func NewGitSource(cfg *config.GitTemplateConfig, logger *slog.Logger) (*GitSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.Clone.LocalPath
	if localPath == "" {
		// Default to temp directory if not specified
		localPath = filepath.Join(os.TempDir(), "palisade-templates")
	}

	return &GitSource{
		cfg:       cfg,
		localPath: localPath,
		auth:      auth,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}, nil
}

// Sync initializes the repository by cloning it locally.
// If the repository already exists and CleanOnStart is false, it opens the
// existing repo. If CleanOnStart is true, it removes any existing repository
// before cloning. Returns an error if cloning fails.
func (s *GitSource) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Clone.CleanOnStart {
		if err := os.RemoveAll(s.localPath); err != nil {
			return fmt.Errorf("failed to clean existing repository: %w", err)
		}
	}

	// Check if repo already exists
	gitDir := filepath.Join(s.localPath, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		repo, err := gogit.PlainOpen(s.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo: %w", err)
		}
		s.repo = repo
		return nil
	}

	if err := os.MkdirAll(s.localPath, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	cloneOpts := &gogit.CloneOptions{
		URL:           s.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		SingleBranch:  s.cfg.Clone.Depth > 0, // Only single branch for shallow clones
		Depth:         s.cfg.Clone.Depth,
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}
	cloneOpts.Auth = auth

	cloneCtx, cancel := context.WithTimeout(ctx, s.cfg.Poll.Timeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, s.localPath, false, cloneOpts)
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	s.repo = repo
	s.logger.Info("template repository cloned",
		"repository", s.cfg.Repository,
		"branch", s.cfg.Branch,
		"local_path", s.localPath,
		"auth", s.auth.Type())
	return nil
}

// Load reads and parses the template at the configured path within the
// repository, cloning first if needed. Load does not pull; use Pull or the
// Watch poll loop to pick up remote changes.
func (s *GitSource) Load(ctx context.Context) (*fasttrack.Template, error) {
	s.mu.RLock()
	initialized := s.repo != nil
	s.mu.RUnlock()

	if !initialized {
		if err := s.Sync(ctx); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(s.TemplatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read template from repository: %w", err)
	}

	return fasttrack.ParseTemplate(data)
}

// Pull fetches latest changes from the remote repository.
// It returns a PullResult indicating whether changes were found and what
// files changed. This method is thread-safe and can be called concurrently.
func (s *GitSource) Pull(ctx context.Context) (*PullResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Sync() first")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	fromSHA := ref.Hash().String()

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	pullOpts := &gogit.PullOptions{
		RemoteName: "origin",
		Force:      false, // Never force pull (fail-safe)
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}
	pullOpts.Auth = auth

	pullCtx, cancel := context.WithTimeout(ctx, s.cfg.Poll.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, pullOpts)
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		s.metrics.FailedPulls++
		return nil, fmt.Errorf("failed to pull: %w", err)
	}

	s.metrics.SuccessfulPulls++

	newRef, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get new HEAD: %w", err)
	}
	toSHA := newRef.Hash().String()

	result := &PullResult{
		FromSHA:    fromSHA,
		ToSHA:      toSHA,
		HadChanges: fromSHA != toSHA,
	}

	if result.HadChanges {
		changedFiles, err := s.changedFilesLocked(fromSHA, toSHA)
		if err != nil {
			return nil, fmt.Errorf("failed to get changed files: %w", err)
		}
		result.ChangedFiles = changedFiles
	}

	return result, nil
}

// CurrentCommit returns metadata about the current HEAD commit.
// This method is thread-safe and can be called concurrently.
func (s *GitSource) CurrentCommit() (*CommitInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Sync() first")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	return s.commitInfo(commit), nil
}

// History returns a list of recent commits, newest first.
// The limit parameter specifies the maximum number of commits to return.
func (s *GitSource) History(limit int) ([]*CommitInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Sync() first")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := s.repo.Log(&gogit.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}

	var history []*CommitInfo
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if count >= limit {
			return fmt.Errorf("limit reached") // Stop iteration
		}
		history = append(history, s.commitInfo(c))
		count++
		return nil
	})

	// Ignore "limit reached" error as it's expected
	if err != nil && err.Error() != "limit reached" {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	return history, nil
}

// Rollback reverts the repository working tree to a specific commit SHA.
// The commit must exist and be reachable in the repository history.
// Returns an error if the target commit cannot be checked out.
func (s *GitSource) Rollback(ctx context.Context, targetSHA string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return fmt.Errorf("repository not initialized, call Sync() first")
	}

	targetHash := plumbing.NewHash(targetSHA)
	if _, err := s.repo.CommitObject(targetHash); err != nil {
		return fmt.Errorf("target commit not found: %w", err)
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.Checkout(&gogit.CheckoutOptions{Hash: targetHash}); err != nil {
		return fmt.Errorf("failed to checkout commit %s: %w", targetSHA, err)
	}

	return nil
}

// Watch polls the remote for changes and invokes onChange when the template
// file is modified. If onChange fails, the working tree is rolled back to the
// last commit that reloaded successfully and onChange is invoked again, so a
// broken template pushed to the repository never displaces a working one.
//
// Watch blocks until the context is cancelled or Close is called. When
// polling is disabled in configuration, Watch returns immediately.
func (s *GitSource) Watch(ctx context.Context, onChange ReloadFunc) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("watch already running")
	}
	if s.repo == nil {
		s.mu.Unlock()
		return fmt.Errorf("repository not initialized, call Sync() first")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if !s.cfg.Poll.Enabled {
		s.logger.Info("template polling disabled, template loaded once at startup")
		return nil
	}

	// Record the starting commit as the rollback point.
	commit, err := s.CurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	s.setLastGood(commit.SHA)

	s.logger.Info("template watch started",
		"poll_interval", s.cfg.Poll.Interval,
		"initial_commit", shortSHA(commit.SHA))

	ticker := time.NewTicker(s.cfg.Poll.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("template watch stopped by context cancellation")
			return nil
		case <-s.stopCh:
			s.logger.Info("template watch stopped")
			return nil
		case <-ticker.C:
			if err := s.checkForChanges(ctx, onChange); err != nil {
				s.logger.Error("error checking for template changes", "error", err)
			}
		}
	}
}

// Close stops the poll loop. It is safe to call Close before or without Watch.
func (s *GitSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.stopCh:
		// Already closed
	default:
		close(s.stopCh)
	}
	return nil
}

// Metrics returns a copy of the current source metrics.
func (s *GitSource) Metrics() SourceMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// LocalPath returns the local filesystem path where the repository is cloned.
func (s *GitSource) LocalPath() string {
	return s.localPath
}

// TemplatePath returns the full path to the template file within the repository.
func (s *GitSource) TemplatePath() string {
	return filepath.Join(s.localPath, filepath.FromSlash(s.cfg.Path))
}

// checkForChanges pulls and reloads if the template file changed.
func (s *GitSource) checkForChanges(ctx context.Context, onChange ReloadFunc) error {
	result, err := s.Pull(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}

	if !result.HadChanges {
		return nil
	}

	if !s.templateChanged(result.ChangedFiles) {
		s.mu.Lock()
		s.metrics.SkippedPolls++
		s.mu.Unlock()
		s.logger.Debug("non-template files changed, skipping reload",
			"changed_files", result.ChangedFiles)
		return nil
	}

	s.logger.Info("template change detected",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA))

	if err := onChange(); err != nil {
		s.mu.Lock()
		s.metrics.FailedReloads++
		previous := s.lastGoodSHA
		s.mu.Unlock()

		s.logger.Error("template reload failed, attempting rollback",
			"error", err,
			"current_sha", shortSHA(result.ToSHA),
			"rollback_to", shortSHA(previous))

		if previous == "" {
			return fmt.Errorf("template reload failed with no rollback point: %w", err)
		}
		if rbErr := s.Rollback(ctx, previous); rbErr != nil {
			return fmt.Errorf("reload failed and rollback failed: %w (rollback: %v)", err, rbErr)
		}
		if rbErr := onChange(); rbErr != nil {
			return fmt.Errorf("reload failed after rollback to %s: %w", shortSHA(previous), rbErr)
		}

		s.logger.Info("rolled back to previous template", "sha", shortSHA(previous))
		return fmt.Errorf("template reload failed: %w", err)
	}

	s.setLastGood(result.ToSHA)
	s.mu.Lock()
	s.metrics.SuccessfulReloads++
	s.metrics.LastReloadTime = time.Now()
	s.mu.Unlock()

	s.logger.Info("template reloaded",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA))
	return nil
}

// templateChanged reports whether the configured template file is among the
// changed paths. Paths from go-git are repository-relative with forward
// slashes.
func (s *GitSource) templateChanged(files []string) bool {
	want := path.Clean(s.cfg.Path)
	for _, f := range files {
		if path.Clean(f) == want {
			return true
		}
	}
	return false
}

// changedFilesLocked returns files changed between two commits.
// Callers must hold s.mu.
func (s *GitSource) changedFilesLocked(fromSHA, toSHA string) ([]string, error) {
	fromCommit, err := s.repo.CommitObject(plumbing.NewHash(fromSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get from commit: %w", err)
	}
	toCommit, err := s.repo.CommitObject(plumbing.NewHash(toSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get to commit: %w", err)
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get from tree: %w", err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get to tree: %w", err)
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	var files []string
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		} else if change.From.Name != "" {
			// File was deleted, use "from" path
			files = append(files, change.From.Name)
		}
	}

	return files, nil
}

func (s *GitSource) commitInfo(c *object.Commit) *CommitInfo {
	return &CommitInfo{
		SHA:        c.Hash.String(),
		Author:     c.Author.Name,
		Email:      c.Author.Email,
		Timestamp:  c.Author.When,
		Message:    c.Message,
		Branch:     s.cfg.Branch,
		Repository: s.cfg.Repository,
	}
}

func (s *GitSource) setLastGood(sha string) {
	s.mu.Lock()
	s.lastGoodSHA = sha
	s.mu.Unlock()
}

// LastGoodSHA returns the commit the template was last successfully loaded
// from, or empty before the first successful reload.
func (s *GitSource) LastGoodSHA() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastGoodSHA
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
