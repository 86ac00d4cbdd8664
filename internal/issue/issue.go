// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestInvalidId
	ProjectStructureInvalidId
	ContainerCorruptId
	IntegrityMismatchId
	UnsupportedVersionId
	ConfigLoadFailedId
	ProjectExistsId
	TemplateNotFoundId
	ScriptFailedId
	ComplianceFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to look up the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the message with a trailing "See also" list when the
// issue carries links.
func (i *Issue) Markdown() string {
	var b strings.Builder
	b.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		b.WriteString("\n\n## See also\n")
		for _, link := range append(slices.Clone(i.docLinks), i.extLinks...) {
			b.WriteString("- <" + string(link) + ">\n")
		}
	}
	return b.String()
}

// Render formats the issue for the terminal using a glamour style name
// ("dark", "light", "notty", ...) or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No manifest.json found!

Every Khatulistiwa project keeps its application manifest in ` + "`manifest.json`" + `
at the project root.

## Things you can try:
- Check that you passed the project directory, not the ` + "`src`" + ` folder
- Scaffold a new project:
~~~
$ khatdev create SiBatik
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# The manifest is invalid!

` + "`manifest.json`" + ` could not be parsed or is missing required fields.

## Required fields:
- ` + "`name`" + `
- ` + "`version`" + `
- ` + "`description`" + `
- ` + "`author`" + `

## Minimal manifest:
~~~json
{
  "name": "SiBatik",
  "version": "1.0.0",
  "description": "Batik pattern gallery",
  "author": "Nusantara Studio"
}
~~~

Comments (` + "`//`" + ` and ` + "`/* */`" + `) and trailing commas are accepted.`,
	}

	projectStructureInvalidIssue = &Issue{
		id: ProjectStructureInvalidId,
		mdMsg: `
# Project structure is incomplete!

A project needs at least ` + "`manifest.json`" + ` and a ` + "`src`" + ` directory.

## Things you can try:
- Compare your tree with a freshly scaffolded project:
~~~
$ khatdev create Contoh --theme parang
~~~`,
	}

	containerCorruptIssue = &Issue{
		id: ContainerCorruptId,
		mdMsg: `
# The container could not be read!

The file is not a .khapp container, was cut short, or one of its sections
is not valid JSON.

## Things you can try:
- Check that the download or copy completed
- Make sure the file starts with the ` + "`KHAP`" + ` signature:
~~~
$ head -c 4 app.khapp
~~~
- Rebuild it from the project sources:
~~~
$ khatdev build ./SiBatik
~~~`,
	}

	integrityMismatchIssue = &Issue{
		id: IntegrityMismatchId,
		mdMsg: `
# Integrity check failed!

The manifest, executable or assets changed after the container was built:
the recomputed SHA-256 does not match the digest stored inside it.

The digest detects modification; it does not prove who built the file.

## Things you can try:
- Obtain the container again from its original source
- Rebuild it locally and compare:
~~~
$ khatdev build ./SiBatik -o rebuilt.khapp
$ khatdev inspect rebuilt.khapp
~~~`,
	}

	unsupportedVersionIssue = &Issue{
		id: UnsupportedVersionId,
		mdMsg: `
# Unsupported container version!

This khatdev reads format version 1 only. The container was produced by a
different toolchain release.

## Things you can try:
- Upgrade khatdev
- Rebuild the container with this khatdev`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The khatdev configuration file could not be read or does not match the schema.

## Things you can try:
- Show where khatdev looks for it:
~~~
$ khatdev config path
~~~
- Write a fresh default file:
~~~
$ khatdev config init
~~~

## Example config.cue:
~~~cue
builder: {
  signer:         "KhatSDK"
  default_locale: "id_ID"
  asset_dirs: ["resources", "assets", "cultural"]
}
ui: verbose: false
~~~`,
	}

	projectExistsIssue = &Issue{
		id: ProjectExistsId,
		mdMsg: `
# The project directory already exists!

` + "`khatdev create`" + ` never overwrites an existing directory.

## Things you can try:
- Pick another name
- Remove or rename the existing directory first`,
	}

	templateNotFoundIssue = &Issue{
		id: TemplateNotFoundId,
		mdMsg: `
# Template not found!

The requested template is not present in the templates directory.

## Things you can try:
- Set ` + "`project.templates_dir`" + ` in your config file
- Run ` + "`khatdev create`" + ` without ` + "`--template`" + ` to use the built-in layout`,
	}

	scriptFailedIssue = &Issue{
		id: ScriptFailedId,
		mdMsg: `
# A project test script failed!

One of the ` + "`tests/test_*.sh`" + ` scripts exited with a non-zero status.
Scripts run in-process with a POSIX shell interpreter. ` + "`head`" + `, ` + "`tail`" + `,
` + "`wc`" + `, ` + "`grep`" + `, ` + "`basename`" + `, ` + "`dirname`" + ` and ` + "`sha256sum`" + ` are built in;
any other command must be available on your PATH.

## Things you can try:
- Run with verbose output to see the script's output:
~~~
$ khatdev --verbose test ./SiBatik
~~~`,
	}

	complianceFailedIssue = &Issue{
		id: ComplianceFailedId,
		mdMsg: `
# Cultural compliance check failed!

Khatulistiwa applications declare their Indonesian cultural elements in the
` + "`cultural`" + ` block of the manifest.

## Recognised batik themes:
parang, kawung, mega_mendung, ceplok, nitik, truntum, sogan, sekar_jagad,
sido_mukti, wahyu_tumurun

## Things you can try:
- Set ` + "`cultural.indonesian_elements`" + ` to ` + "`true`" + `
- Pick a recognised ` + "`cultural.batik_theme`" + `
- Define at least four entries in ` + "`cultural.cultural_colors`" + ``,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

khatdev could not read the project or write its output.

## Things you can try:
- Check file and directory permissions
- Write the output somewhere you own with ` + "`-o`" + ``,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():        manifestNotFoundIssue,
		manifestInvalidIssue.Id():         manifestInvalidIssue,
		projectStructureInvalidIssue.Id(): projectStructureInvalidIssue,
		containerCorruptIssue.Id():        containerCorruptIssue,
		integrityMismatchIssue.Id():       integrityMismatchIssue,
		unsupportedVersionIssue.Id():      unsupportedVersionIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		projectExistsIssue.Id():           projectExistsIssue,
		templateNotFoundIssue.Id():        templateNotFoundIssue,
		scriptFailedIssue.Id():            scriptFailedIssue,
		complianceFailedIssue.Id():        complianceFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, is := range issues {
		out = append(out, is)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
