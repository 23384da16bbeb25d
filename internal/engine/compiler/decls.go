package compiler

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// OverloadSeparator splits a function name into the member it overloads and a suffix:
// Main__args is an overload of Main.
const OverloadSeparator = "__"

// Method is an exported method of an exported type.
type Method struct {
	Name    string
	Pointer bool
}

// Decls lists the exported top-level declarations of a unit.
type Decls struct {
	Package string
	Funcs   []string
	Types   []string
	Methods map[string][]Method
}

// Declarations parses src and returns its exported declarations in source order.
func Declarations(src []byte) (*Decls, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	d := &Decls{Package: f.Name.Name, Methods: make(map[string][]Method)}
	for _, decl := range f.Decls {
		switch x := decl.(type) {
		case *ast.FuncDecl:
			if !x.Name.IsExported() || x.Type.TypeParams != nil {
				continue
			}
			if x.Recv == nil {
				d.Funcs = append(d.Funcs, x.Name.Name)
				continue
			}
			recv, pointer := receiver(x.Recv)
			if ast.IsExported(recv) {
				d.Methods[recv] = append(d.Methods[recv], Method{Name: x.Name.Name, Pointer: pointer})
			}
		case *ast.GenDecl:
			if x.Tok != token.TYPE {
				continue
			}
			for _, spec := range x.Specs {
				ts := spec.(*ast.TypeSpec)
				if ts.Name.IsExported() && ts.TypeParams == nil {
					d.Types = append(d.Types, ts.Name.Name)
				}
			}
		}
	}
	return d, nil
}

// MemberName returns the member a function name belongs to.
func MemberName(name string) string {
	if base, _, ok := strings.Cut(name, OverloadSeparator); ok && base != "" {
		return base
	}
	return name
}

func receiver(fields *ast.FieldList) (string, bool) {
	if fields == nil || len(fields.List) == 0 {
		return "", false
	}
	expr := fields.List[0].Type
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, pointer
	case *ast.IndexExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	case *ast.IndexListExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name, pointer
		}
	}
	return "", pointer
}
