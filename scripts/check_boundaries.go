package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "commonwealth"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the in-module import prefixes a layer may use, relative to
// its own service. Stdlib imports are always allowed; third-party imports are
// allowed only when thirdParty is set.
type layerRule struct {
	service    []string
	shared     []string
	thirdParty bool
}

var layerRules = map[string]layerRule{
	"domain": {
		service: []string{"/domain"},
	},
	"ports": {
		service: []string{"/domain", "/ports"},
		shared:  []string{"/contracts"},
	},
	"application": {
		service: []string{"/application", "/domain", "/ports"},
		shared:  []string{"/contracts"},
	},
	"transport": {
		service: []string{"/transport"},
	},
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		normalized := filepath.ToSlash(path)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			violations = append(violations, violation{File: normalized, Line: 1, Rule: "file must parse"})
			return nil
		}
		servicePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		for _, imp := range file.Imports {
			importPath := strings.Trim(imp.Path.Value, "\"")
			line := fset.Position(imp.Pos()).Line
			for _, rule := range checkImport(parts[3], servicePrefix, importPath) {
				violations = append(violations, violation{
					File:   normalized,
					Line:   line,
					Import: importPath,
					Rule:   rule,
				})
			}
		}
		return nil
	})
	return violations
}

// checkImport returns the rules importPath breaks when imported from layer of
// the service rooted at servicePrefix.
func checkImport(layer string, servicePrefix string, importPath string) []string {
	var broken []string
	if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, servicePrefix) {
		broken = append(broken, "cross-module imports are forbidden")
	}

	rule, ok := layerRules[layer]
	if !ok || isStdlib(importPath) {
		return broken
	}
	if strings.Contains(importPath, "/adapters/") {
		broken = append(broken, layer+" must not import adapters")
	}
	if hasPrefix(importPath, modulePath+"/internal") || hasPrefix(importPath, modulePath+"/cmd") {
		broken = append(broken, layer+" must not import runtime infrastructure")
	}

	if !hasPrefix(importPath, modulePath) {
		if !rule.thirdParty {
			broken = append(broken, layer+" must not import third-party packages")
		}
		return broken
	}
	for _, suffix := range rule.service {
		if hasPrefix(importPath, servicePrefix+suffix) {
			return broken
		}
	}
	for _, shared := range rule.shared {
		if hasPrefix(importPath, modulePath+shared) {
			return broken
		}
	}
	return append(broken, layer+" import is outside explicit allowlist")
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return first != modulePath && !strings.Contains(first, ".")
}
