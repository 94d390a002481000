// Package emitter renders the four per-tag TypeScript sections: the endpoint
// map, the interfaces, the service class and the query/mutation hooks. Each
// generator returns structured parts so that layouts can be assembled
// without re-reading generated text.
package emitter

import "strings"

// Decl is one top-level declaration.
type Decl struct {
	Name string
	Text string // no trailing newline
}

func joinDecls(groups ...[]Decl) string {
	var parts []string
	for _, g := range groups {
		for _, d := range g {
			parts = append(parts, d.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// EndpointsSection is the ENDPOINTS constant of one tag.
type EndpointsSection struct {
	Text string
}

// InterfacesSection holds the type declarations of one tag, grouped in
// emission order.
type InterfacesSection struct {
	Common    []Decl // ResponseObject, PaginationList, PaginationParams
	Responses []Decl // per-operation response and page item types
	Models    []Decl // registry schemas the tag needs
	Params    []Decl // per-operation parameters interfaces
	Bodies    []Decl // per-operation request body types
	Contract  Decl   // the service interface
}

// ModelsText renders every declaration except the contract.
func (s *InterfacesSection) ModelsText() string {
	return joinDecls(s.Common, s.Responses, s.Models, s.Params, s.Bodies)
}

// ModelNames lists the names declared by ModelsText, in order.
func (s *InterfacesSection) ModelNames() []string {
	var out []string
	for _, g := range [][]Decl{s.Common, s.Responses, s.Models, s.Params, s.Bodies} {
		for _, d := range g {
			out = append(out, d.Name)
		}
	}
	return out
}

// ServiceSection is the service class and its exported instance.
type ServiceSection struct {
	Class    string
	Instance string
	Text     string
}

// PresentationSection holds one hook per operation.
type PresentationSection struct {
	Hooks        []Decl
	UsesQuery    bool
	UsesMutation bool
}

// Text renders every hook.
func (s *PresentationSection) Text() string { return joinDecls(s.Hooks) }

// Sections are the four generated sections of one tag.
type Sections struct {
	Endpoints    *EndpointsSection
	Interfaces   *InterfacesSection
	Service      *ServiceSection
	Presentation *PresentationSection
}
