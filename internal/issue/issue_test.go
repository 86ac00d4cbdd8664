// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		ManifestNotFoundId,
		ManifestInvalidId,
		ProjectStructureInvalidId,
		ContainerCorruptId,
		IntegrityMismatchId,
		UnsupportedVersionId,
		ConfigLoadFailedId,
		ProjectExistsId,
		TemplateNotFoundId,
		ScriptFailedId,
		ComplianceFailedId,
		PermissionDeniedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil, every Id needs a catalog entry", id)
		}
	}

	if ManifestNotFoundId != 1 {
		t.Errorf("ManifestNotFoundId = %d, want 1", ManifestNotFoundId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{ManifestNotFoundId, false, "No manifest.json found"},
		{ManifestInvalidId, false, "The manifest is invalid"},
		{ProjectStructureInvalidId, false, "Project structure"},
		{ContainerCorruptId, false, "could not be read"},
		{IntegrityMismatchId, false, "Integrity check failed"},
		{UnsupportedVersionId, false, "Unsupported container version"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{ProjectExistsId, false, "already exists"},
		{TemplateNotFoundId, false, "Template not found"},
		{ScriptFailedId, false, "test script failed"},
		{ComplianceFailedId, false, "compliance check failed"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			is := Get(tt.id)

			if tt.wantNil {
				if is != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}
			if is == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if is.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", is.Id(), tt.id)
			}
			if !strings.Contains(string(is.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	all := Values()
	if len(all) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(all), len(issues))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Id() >= all[i].Id() {
			t.Errorf("Values() not ordered by Id at %d: %d then %d", i, all[i-1].Id(), all[i].Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	is := &Issue{id: 1, docLinks: []HttpLink{"https://example.com/a"}, extLinks: []HttpLink{"https://example.com/b"}}

	links := is.DocLinks()
	links[0] = "modified"
	if is.DocLinks()[0] != "https://example.com/a" {
		t.Error("DocLinks() should return a clone")
	}
	ext := is.ExtLinks()
	ext[0] = "modified"
	if is.ExtLinks()[0] != "https://example.com/b" {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Markdown(t *testing.T) {
	t.Run("without links", func(t *testing.T) {
		is := Get(ProjectExistsId)
		if got := is.Markdown(); got != string(is.MarkdownMsg()) {
			t.Errorf("Markdown() added content to an issue without links:\n%s", got)
		}
	})

	t.Run("with links", func(t *testing.T) {
		is := &Issue{id: 1, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/doc"}, extLinks: []HttpLink{"https://example.com/ext"}}
		want := "# Title\n\n## See also\n- <https://example.com/doc>\n- <https://example.com/ext>\n"
		if got := is.Markdown(); got != want {
			t.Errorf("Markdown() = %q, want %q", got, want)
		}
	})
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	rendered, err := Get(IntegrityMismatchId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "SHA-256") {
		t.Error("Render() output should contain the issue content")
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	rendered, err := Get(ManifestInvalidId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "Required fields") {
		t.Errorf("rendered output missing heading:\n%s", rendered)
	}
}
