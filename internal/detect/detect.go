package detect

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Context represents the detected existing-project context supplied to the
// plan builder. Its absence degrades planning to the fixed baseline.
type Context struct {
	// Root is the project directory that was scanned
	Root string

	// Languages detected from file extensions, sorted
	Languages []string

	// Features are keywords detected from the directory layout (e.g.
	// "auth", "content") that bias objective classification
	Features []string

	// HasTests reports whether test-shaped files already exist
	HasTests bool
}

// extensionLanguages maps file extensions to language names.
var extensionLanguages = map[string]string{
	".go":  "go",
	".ts":  "typescript",
	".tsx": "typescript",
	".js":  "javascript",
	".jsx": "javascript",
	".py":  "python",
	".rb":  "ruby",
	".rs":  "rust",
}

// featureDirectories maps directory names to the feature keyword they
// signal. Keywords feed the plan builder's objective rule table.
var featureDirectories = map[string]string{
	"auth":     "auth",
	"login":    "auth",
	"users":    "auth",
	"content":  "content",
	"posts":    "blog",
	"blog":     "blog",
	"articles": "article",
	"shop":     "shop",
	"cart":     "cart",
	"api":      "api",
	"search":   "search",
	"admin":    "admin",
	"chat":     "chat",
}

// Detect scans an existing project directory. A missing or empty root is
// not an error: it returns nil so the caller falls back to baseline
// planning.
func Detect(root string) (*Context, error) {
	if root == "" {
		return nil, nil
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	languages := map[string]bool{}
	features := map[string]bool{}
	hasTests := false

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := d.Name()
		if d.IsDir() {
			if name == ".git" || name == "node_modules" || name == "vendor" {
				return filepath.SkipDir
			}
			if kw, ok := featureDirectories[strings.ToLower(name)]; ok {
				features[kw] = true
			}
			return nil
		}

		if lang, ok := extensionLanguages[filepath.Ext(name)]; ok {
			languages[lang] = true
		}
		if isTestFile(name) {
			hasTests = true
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	ctx := &Context{
		Root:      root,
		Languages: sortedKeys(languages),
		Features:  sortedKeys(features),
		HasTests:  hasTests,
	}
	return ctx, nil
}

func isTestFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, "_test.go") ||
		strings.Contains(lower, ".test.") ||
		strings.Contains(lower, ".spec.")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
