package sitegen

// Document is a flat, serialisable view of a ResolvedConfig laid out the way
// bundler configuration files usually are.
type Document struct {
	Name      string            `json:"name" yaml:"name"`
	Mode      Mode              `json:"mode" yaml:"mode"`
	Entry     map[string]string `json:"entry" yaml:"entry"`
	Output    OutputSpec        `json:"output" yaml:"output"`
	Module    ModuleDocument    `json:"module" yaml:"module"`
	Resolve   ResolveDocument   `json:"resolve" yaml:"resolve"`
	Plugins   []OutputPlugin    `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	Externals []string          `json:"externals,omitempty" yaml:"externals,omitempty"`
}

type ModuleDocument struct {
	Rules []ModuleRule `json:"rules" yaml:"rules"`
}

type ResolveDocument struct {
	Alias      map[string]string `json:"alias,omitempty" yaml:"alias,omitempty"`
	Extensions []string          `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	MainFields []string          `json:"mainFields,omitempty" yaml:"mainFields,omitempty"`
}

// Document flattens the site fields and the shared base into one value.
// Everything in the result is a copy.
func (c ResolvedConfig) Document() Document {
	c = c.Clone()
	return Document{
		Name:   c.Name,
		Mode:   c.Mode(),
		Entry:  c.Entries,
		Output: c.Output,
		Module: ModuleDocument{Rules: c.Rules()},
		Resolve: ResolveDocument{
			Alias:      c.Aliases(),
			Extensions: c.Extensions(),
			MainFields: c.MainFields(),
		},
		Plugins:   c.Plugins(),
		Externals: c.Externals(),
	}
}
