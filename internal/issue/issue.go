// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"slices"

	"github.com/Azure/swagger-to-sdk/internal/generator"
	"github.com/Azure/swagger-to-sdk/pkg/sdkconfig"

	"github.com/charmbracelet/glamour"
)

const (
	ConfigNotFoundId Id = iota + 1
	ConfigInvalidId
	UnsupportedVersionId
	ProjectInputId
	ReservedKeyId
	NoMatchingProjectId
	GeneratorNotFoundId
	GeneratorFailedId
	GeneratorTimeoutId
	StagingFailedId
	AfterScriptFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry with Markdown guidance for one failure class.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

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

// Render renders the guidance with the glamour style at stylePath
// ("auto", "dark", "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- " + string(link)
		}
		for _, link := range i.extLinks {
			extraMd += "\n- " + string(link)
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configDocLink   HttpLink = "https://github.com/Azure/swagger-to-sdk#configuration"
	autorestExtLink HttpLink = "https://github.com/Azure/autorest"

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# Configuration not found!

The SDK configuration document could not be read.

## Things you can try:
- Check that ` + "`--sdk-folder`" + ` points to the SDK checkout
- Pass the document explicitly:
~~~
$ swaggertosdk --config path/to/swagger_to_sdk_config.json Azure/azure-sdk-for-python
~~~`,
		docLinks: []HttpLink{configDocLink},
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# Invalid configuration document!

The configuration is not valid JSON or does not match the expected structure.

## Expected shape:
~~~json
{
  "meta": {"version": "0.2.0", "autorest_options": {}},
  "projects": {
    "batch": {
      "markdown": "specification/batch/resource-manager/readme.md",
      "output_dir": "azure-mgmt-batch/azure/mgmt/batch"
    }
  }
}
~~~`,
		docLinks: []HttpLink{configDocLink},
	}

	unsupportedVersionIssue = &Issue{
		id: UnsupportedVersionId,
		mdMsg: `
# Unsupported configuration version!

` + "`meta.version`" + ` must be one of:
- ` + "`0.1.0`" + `: every project has a ` + "`swagger`" + ` path
- ` + "`0.2.0`" + `: every project has exactly one of ` + "`markdown`" + `, ` + "`composite`" + ` or ` + "`autorest_options.input-file`",
		docLinks: []HttpLink{configDocLink},
	}

	projectInputIssue = &Issue{
		id: ProjectInputId,
		mdMsg: `
# Project input is not valid!

A project does not declare its input the way its configuration version requires,
or misses its ` + "`output_dir`" + `.

## Things you can try:
- For 0.1.0 documents, give each project a ` + "`swagger`" + ` path
- For 0.2.0 documents, keep exactly one input field per project
- Make sure every project has an ` + "`output_dir`",
		docLinks: []HttpLink{configDocLink},
	}

	reservedKeyIssue = &Issue{
		id: ReservedKeyId,
		mdMsg: `
# Reserved option used!

` + "`output-folder`" + `, ` + "`input`" + ` and ` + "`output`" + ` (and ` + "`-i`" + `/` + "`-o`" + ` in 0.1.0
documents) are computed for every project and cannot be set in
` + "`autorest_options`" + `, ` + "`--option`" + ` or ` + "`--options-file`" + `.

## Things you can try:
- Remove the option and set ` + "`output_dir`" + ` on the project instead`,
		docLinks: []HttpLink{configDocLink},
	}

	noMatchingProjectIssue = &Issue{
		id: NoMatchingProjectId,
		mdMsg: `
# No project matches!

None of the configured project ids contains any of the ` + "`--project`" + ` values.

## Things you can try:
- List the ids under ` + "`projects`" + ` in the configuration
- Use a shorter substring, e.g. ` + "`--project compute`",
	}

	generatorNotFoundIssue = &Issue{
		id: GeneratorNotFoundId,
		mdMsg: `
# Generator could not be started!

The code generator command was not found or could not be executed.

## Things you can try:
- Install AutoRest and make sure it is in your PATH:
~~~
$ npm install -g autorest
~~~

- Or point to another executable:
~~~
$ swaggertosdk --autorest "node /opt/autorest/app.js" Azure/azure-sdk-for-python
~~~`,
		extLinks: []HttpLink{autorestExtLink},
	}

	generatorFailedIssue = &Issue{
		id: GeneratorFailedId,
		mdMsg: `
# Generation failed!

The generator exited with an error or produced no file. Its output is shown in
the run summary.

## Things you can try:
- Re-run the project alone with ` + "`--project <id> --debug`" + `
- Validate the input documents with the generator directly`,
		extLinks: []HttpLink{autorestExtLink},
	}

	generatorTimeoutIssue = &Issue{
		id: GeneratorTimeoutId,
		mdMsg: `
# Generation timed out!

The generator did not finish within the configured timeout.

## Things you can try:
- Raise the limit, e.g. ` + "`--timeout 1h`" + `
- Run fewer projects at once with ` + "`--jobs 1`",
	}

	stagingFailedIssue = &Issue{
		id: StagingFailedId,
		mdMsg: `
# Generated files could not be staged!

Moving the generated tree into the SDK checkout failed.

## Common causes:
- ` + "`generated_relative_base_directory`" + ` matches no folder, or several
- The output directory is not writable`,
		docLinks: []HttpLink{configDocLink},
	}

	afterScriptFailedIssue = &Issue{
		id: AfterScriptFailedId,
		mdMsg: `
# After script failed!

A script listed in ` + "`after_scripts`" + ` exited with an error. Scripts run in the
SDK folder with the embedded shell interpreter.`,
	}

	issues = map[Id]*Issue{
		configNotFoundIssue.Id():     configNotFoundIssue,
		configInvalidIssue.Id():      configInvalidIssue,
		unsupportedVersionIssue.Id(): unsupportedVersionIssue,
		projectInputIssue.Id():       projectInputIssue,
		reservedKeyIssue.Id():        reservedKeyIssue,
		noMatchingProjectIssue.Id():  noMatchingProjectIssue,
		generatorNotFoundIssue.Id():  generatorNotFoundIssue,
		generatorFailedIssue.Id():    generatorFailedIssue,
		generatorTimeoutIssue.Id():   generatorTimeoutIssue,
		stagingFailedIssue.Id():      stagingFailedIssue,
		afterScriptFailedIssue.Id():  afterScriptFailedIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForError returns the catalog entry that explains err, or nil.
func ForError(err error) *Issue {
	var cfgErr *sdkconfig.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Kind {
		case sdkconfig.UnsupportedVersion:
			return Get(UnsupportedVersionId)
		case sdkconfig.ReservedKeyUsed:
			return Get(ReservedKeyId)
		case sdkconfig.NoMatchingProject:
			return Get(NoMatchingProjectId)
		case sdkconfig.InvalidDocument, sdkconfig.DuplicateBuildDir:
			return Get(ConfigInvalidId)
		default:
			return Get(ProjectInputId)
		}
	}

	switch generator.KindOf(err) {
	case generator.LaunchFailed:
		return Get(GeneratorNotFoundId)
	case generator.NonZeroExit, generator.NoOutput:
		return Get(GeneratorFailedId)
	case generator.Timeout:
		return Get(GeneratorTimeoutId)
	case generator.Staging:
		return Get(StagingFailedId)
	case generator.AfterScript:
		return Get(AfterScriptFailedId)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return Get(ConfigNotFoundId)
	}
	return nil
}
