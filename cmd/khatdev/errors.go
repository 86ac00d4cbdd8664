// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/khatulistiwa/khatdev/internal/issue"
	"github.com/khatulistiwa/khatdev/pkg/archive"
	"github.com/khatulistiwa/khatdev/pkg/khapp"
	"github.com/khatulistiwa/khatdev/pkg/project"
)

// Process exit statuses. Integrity failures get their own status so scripts
// can tell a tampered container from any other error.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitIntegrity = 2
)

// ExitError carries the status a command wants the process to exit with.
// Execute converts it into os.Exit after fang has printed the error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// classification pairs an error kind with its catalog entry and hints.
type classification struct {
	issue       issue.Id
	suggestions []string
}

// classify returns the catalog entry and suggestions for a domain error.
func classify(err error) classification {
	var manifestErr *project.ManifestError
	switch {
	case errors.Is(err, project.ErrManifestNotFound), errors.Is(err, archive.ErrNoManifest):
		return classification{issue.ManifestNotFoundId, []string{"Run 'khatdev create <name>' to scaffold a project"}}
	case errors.As(err, &manifestErr), errors.Is(err, khapp.ErrValidation):
		return classification{issue.ManifestInvalidId, []string{"Check the required fields name, version, description and author"}}
	case errors.Is(err, project.ErrInvalidStructure), errors.Is(err, project.ErrSourceNotFound):
		return classification{issue.ProjectStructureInvalidId, nil}
	case errors.Is(err, khapp.ErrIntegrity), errors.Is(err, archive.ErrChecksumMismatch):
		return classification{issue.IntegrityMismatchId, []string{"Obtain the container again from its original source"}}
	case errors.Is(err, khapp.ErrUnsupportedVersion):
		return classification{issue.UnsupportedVersionId, nil}
	case errors.Is(err, khapp.ErrFormat), errors.Is(err, khapp.ErrTruncated), errors.Is(err, khapp.ErrEncoding):
		return classification{issue.ContainerCorruptId, []string{"Check that the file was copied completely"}}
	case errors.Is(err, project.ErrProjectExists):
		return classification{issue.ProjectExistsId, []string{"Pick another name or remove the existing directory"}}
	case errors.Is(err, project.ErrTemplateNotFound):
		return classification{issue.TemplateNotFoundId, nil}
	case errors.Is(err, project.ErrComplianceFailed):
		return classification{issue.ComplianceFailedId, nil}
	case errors.Is(err, ErrScriptsFailed):
		return classification{issue.ScriptFailedId, []string{"Re-run with --verbose to stream script output"}}
	case errors.Is(err, fs.ErrPermission):
		return classification{issue.PermissionDeniedId, nil}
	}
	return classification{}
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	if errors.Is(err, khapp.ErrIntegrity) || errors.Is(err, archive.ErrChecksumMismatch) {
		return ExitIntegrity
	}
	return ExitFailure
}

// fail turns a domain error into an ActionableError, renders its catalog
// entry to stderr and returns it wrapped in an ExitError.
func (a *App) fail(err error, operation, resource string) error {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		c := classify(err)
		ae = issue.NewErrorContext().
			WithOperation(operation).
			WithResource(resource).
			WithSuggestions(c.suggestions...).
			WithIssue(c.issue).
			Wrap(err).
			Build()
	}
	a.renderIssue(ae)
	return &ExitError{Code: exitCodeFor(err), Err: ae}
}

func (a *App) renderIssue(ae *issue.ActionableError) {
	if is, ok := issue.IssueOf(ae); ok {
		rendered, err := is.Render(a.issueStyle())
		if err != nil {
			a.logger.Warn("failed to render issue catalog entry", "issue", ae.Issue, "err", err)
		} else {
			fmt.Fprint(a.stderr, rendered)
		}
	}
	for _, sug := range ae.Suggestions {
		fmt.Fprintf(a.stderr, "  %s %s\n", WarningStyle.Render("•"), sug)
	}
}
