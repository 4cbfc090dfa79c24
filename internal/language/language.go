// Package language holds the fixed language tables shared by the room
// engine and the execution service: the normalized alias set used for
// lang:update, the shorthand fallbacks used during runtime resolution, and
// the conventional source filename per canonical language.
package language

import "strings"

// Default is the language a room starts with.
const Default = "python"

// genericFilename is used for canonical names missing from the filename table.
const genericFilename = "main"

var canonical = map[string]string{
	"python":     "main.py",
	"javascript": "main.js",
	"typescript": "main.ts",
	"cpp":        "main.cpp",
	"c":          "main.c",
	"java":       "Main.java",
	"go":         "main.go",
	"rust":       "main.rs",
	"ruby":       "main.rb",
	"php":        "main.php",
	"csharp":     "Main.cs",
	"kotlin":     "Main.kt",
	"swift":      "main.swift",
	"bash":       "main.sh",
}

// shorthands maps common user-typed forms to a canonical name.
var shorthands = map[string]string{
	"js":      "javascript",
	"node":    "javascript",
	"py":      "python",
	"py3":     "python",
	"python3": "python",
	"ts":      "typescript",
	"c++":     "cpp",
	"cxx":     "cpp",
	"golang":  "go",
	"rs":      "rust",
	"rb":      "ruby",
	"cs":      "csharp",
	"c#":      "csharp",
	"kt":      "kotlin",
	"sh":      "bash",
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize maps a user supplied language name onto the canonical set.
// It reports false for empty or unknown input.
func Normalize(name string) (string, bool) {
	k := key(name)
	if k == "" {
		return "", false
	}
	if _, ok := canonical[k]; ok {
		return k, true
	}
	if c, ok := shorthands[k]; ok {
		return c, true
	}
	return "", false
}

// Fallback returns the canonical name for a known shorthand only.
func Fallback(name string) (string, bool) {
	c, ok := shorthands[key(name)]
	return c, ok
}

// Filename returns the conventional source file name for a language. Engine
// names such as "c++" are mapped through the shorthand table first.
func Filename(name string) string {
	if c, ok := Normalize(name); ok {
		return canonical[c]
	}
	return genericFilename
}
