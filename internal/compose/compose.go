// Package compose lays the generated sections of a tag out as files: one
// file per tag (unified) or four files in a per-tag folder (distributed).
// Both layouts carry byte-identical section bodies; only imports differ.
package compose

import (
	"fmt"
	"strings"

	"github.com/mark3labs/swagger2hooks/internal/emitter"
	"github.com/mark3labs/swagger2hooks/internal/plan"
)

// Header opens every generated file.
const Header = "// Code generated by swagger2hooks. DO NOT EDIT.\n"

// Imports are the module specifiers of the collaborators generated code uses.
type Imports struct {
	HTTPClient    string // default export: the HTTP client
	RequestHelper string // named export: handleRequest
	Query         string // named exports: useQuery, useMutation
}

// DefaultImports returns the specifiers used when none are configured.
func DefaultImports() Imports {
	return Imports{
		HTTPClient:    "@/lib/httpClient",
		RequestHelper: "@/lib/handleRequest",
		Query:         "@tanstack/react-query",
	}
}

func (im Imports) withDefaults() Imports {
	d := DefaultImports()
	if strings.TrimSpace(im.HTTPClient) == "" {
		im.HTTPClient = d.HTTPClient
	}
	if strings.TrimSpace(im.RequestHelper) == "" {
		im.RequestHelper = d.RequestHelper
	}
	if strings.TrimSpace(im.Query) == "" {
		im.Query = d.Query
	}
	return im
}

// File is one generated file. Path is slash-separated and relative to the
// output directory.
type File struct {
	Tag     string
	Path    string
	Content []byte
}

// Layout selects how a tag's sections become files.
type Layout int

const (
	Unified Layout = iota
	Distributed
)

func (l Layout) String() string {
	if l == Distributed {
		return "distributed"
	}
	return "unified"
}

// LayoutFor maps the caller's createFolders and folderStructure settings to
// a layout. Only folderStructure "distributed" together with createFolders
// selects the distributed layout.
func LayoutFor(createFolders bool, folderStructure string) Layout {
	if createFolders && strings.EqualFold(strings.TrimSpace(folderStructure), "distributed") {
		return Distributed
	}
	return Unified
}

// Compose lays out one tag.
func Compose(layout Layout, names plan.TagNames, s *emitter.Sections, im Imports) []File {
	if layout == Distributed {
		return distributed(names, s, im.withDefaults())
	}
	return []File{unified(names, s, im.withDefaults())}
}

func unified(names plan.TagNames, s *emitter.Sections, im Imports) File {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	writeRuntimeImports(&b, im)
	if q := queryImport(s.Presentation, im); q != "" {
		b.WriteString(q)
	}
	body := []string{
		s.Endpoints.Text,
		s.Interfaces.ModelsText(),
		s.Interfaces.Contract.Text,
		s.Service.Text,
		s.Presentation.Text(),
	}
	writeBody(&b, body...)
	return File{Tag: names.Tag, Path: names.File + ".ts", Content: []byte(b.String())}
}

// Paths of the distributed layout, relative to the output directory.
func distributedPaths(names plan.TagNames) (service, presentation, contract, models string) {
	dir := names.File
	return dir + "/" + names.File + ".service.ts",
		dir + "/" + names.File + ".presentation.ts",
		dir + "/domains/" + names.Interface + ".ts",
		dir + "/domains/models/" + names.Pascal + ".ts"
}

func distributed(names plan.TagNames, s *emitter.Sections, im Imports) []File {
	servicePath, presentationPath, contractPath, modelsPath := distributedPaths(names)
	modelNames := s.Interfaces.ModelNames()

	var models strings.Builder
	models.WriteString(Header)
	writeBody(&models, s.Interfaces.ModelsText())

	var contract strings.Builder
	contract.WriteString(Header)
	contract.WriteString("\n")
	writeTypeImport(&contract, modelNames, "./models/"+names.Pascal)
	writeBody(&contract, s.Interfaces.Contract.Text)

	var service strings.Builder
	service.WriteString(Header)
	service.WriteString("\n")
	writeRuntimeImports(&service, im)
	writeTypeImport(&service, []string{names.Interface}, "./domains/"+names.Interface)
	writeTypeImport(&service, modelNames, "./domains/models/"+names.Pascal)
	writeBody(&service, s.Endpoints.Text, s.Service.Text)

	var presentation strings.Builder
	presentation.WriteString(Header)
	presentation.WriteString("\n")
	if q := queryImport(s.Presentation, im); q != "" {
		presentation.WriteString(q)
	}
	fmt.Fprintf(&presentation, "import { %s } from %q;\n", names.Instance, "./"+names.File+".service")
	writeTypeImport(&presentation, modelNames, "./domains/models/"+names.Pascal)
	writeBody(&presentation, s.Presentation.Text())

	return []File{
		{Tag: names.Tag, Path: servicePath, Content: []byte(service.String())},
		{Tag: names.Tag, Path: presentationPath, Content: []byte(presentation.String())},
		{Tag: names.Tag, Path: contractPath, Content: []byte(contract.String())},
		{Tag: names.Tag, Path: modelsPath, Content: []byte(models.String())},
	}
}

func writeRuntimeImports(b *strings.Builder, im Imports) {
	fmt.Fprintf(b, "import httpClient from %q;\n", im.HTTPClient)
	fmt.Fprintf(b, "import { handleRequest } from %q;\n", im.RequestHelper)
}

func queryImport(p *emitter.PresentationSection, im Imports) string {
	var hooks []string
	if p.UsesMutation {
		hooks = append(hooks, "useMutation")
	}
	if p.UsesQuery {
		hooks = append(hooks, "useQuery")
	}
	if len(hooks) == 0 {
		return ""
	}
	return fmt.Sprintf("import { %s } from %q;\n", strings.Join(hooks, ", "), im.Query)
}

func writeTypeImport(b *strings.Builder, names []string, from string) {
	if len(names) == 0 {
		return
	}
	b.WriteString("import type {\n")
	for _, n := range names {
		b.WriteString("  ")
		b.WriteString(n)
		b.WriteString(",\n")
	}
	fmt.Fprintf(b, "} from %q;\n", from)
}

// writeBody appends each non-empty section after a blank line and ends the
// file with a newline.
func writeBody(b *strings.Builder, sections ...string) {
	for _, sec := range sections {
		if sec == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(sec)
		b.WriteString("\n")
	}
}
