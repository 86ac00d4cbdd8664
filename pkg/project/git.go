// SPDX-License-Identifier: MPL-2.0

package project

import (
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// GitIgnore keeps build output out of a new project's repository.
const GitIgnore = `# khatdev build output
dist/
*.khapp
*.khapp.sha256
`

// InitRepository creates a git repository on branch main in dir, writes
// .gitignore and stages every file. Nothing is committed, so no identity is
// needed.
func InitRepository(dir string) error {
	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: "refs/heads/main",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize git repository: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(GitIgnore), filePerm); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage project files: %w", err)
	}
	return nil
}
