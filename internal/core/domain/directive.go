package domain

// Directive keywords recognized after DirectivePrefix.
const (
	KeywordRef    = "ref"
	KeywordInc    = "inc"
	KeywordNuget  = "nuget"
	KeywordDir    = "dir"
	KeywordArgs   = "args"
	KeywordCo     = "co"
	KeywordRes    = "res"
	KeywordEngine = "engine"
)

// PreserveMainFlag is the import option that keeps an imported unit's entry point.
const PreserveMainFlag = "preserve_main"

// Directive is a single build directive extracted from source text.
type Directive struct {
	// Keyword is the canonical lower-case keyword, or the raw keyword if unknown.
	Keyword string
	// Argument is the raw argument text with surrounding whitespace removed.
	Argument string
	// Offset is the byte offset of the directive prefix in the source text.
	Offset int
	// Line is the 1-based line of the directive.
	Line int
}

// ImportSpec describes one import directive.
type ImportSpec struct {
	Pattern      string            `json:"pattern"`
	RenameMap    map[string]string `json:"rename_map,omitempty"`
	PreserveMain bool              `json:"preserve_main,omitempty"`
	Line         int               `json:"line"`
}

// DirectiveSet is the parsed directive content of one source unit.
type DirectiveSet struct {
	References      []string
	Imports         []ImportSpec
	Packages        []string
	SearchDirs      []string
	CompilerOptions []string
	Resources       []string
	Args            []string
	Engine          string
}
