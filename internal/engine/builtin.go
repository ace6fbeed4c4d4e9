package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgeflow/forgeflow/internal/plan"
)

// TemplateEngine is the built-in reference backend. It emits small
// deterministic artifacts per task type, which keeps the control loop
// runnable and testable without any external generation service.
type TemplateEngine struct{}

// NewTemplateEngine returns the built-in template backend
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{}
}

// Invoke implements Client
func (t *TemplateEngine) Invoke(_ context.Context, req InvokeRequest) (*InvokeResponse, error) {
	stem := slugify(req.Description)

	switch req.TaskType {
	case plan.TaskTypeScaffold:
		return &InvokeResponse{
			Files: []GeneratedFile{
				{Path: "src/main.ts", Content: "export function main(): void {\n  render()\n}\n"},
				{Path: "src/app.tsx", Content: "export function App(): JSX.Element {\n  return (\n    <main>\n      <h1>Generated App</h1>\n    </main>\n  )\n}\n"},
				{Path: "index.html", Content: "<!doctype html>\n<html lang=\"en\">\n  <body>\n    <div id=\"root\"></div>\n  </body>\n</html>\n"},
			},
			Metadata: map[string]string{"template": "scaffold"},
		}, nil

	case plan.TaskTypeImplement, plan.TaskTypeRefactor, plan.TaskTypeQuickFix:
		path := fmt.Sprintf("src/features/%s.tsx", stem)
		content := fmt.Sprintf("// %s\nexport function %s(): JSX.Element {\n  return (\n    <section aria-label=%q>\n      <h2>%s</h2>\n    </section>\n  )\n}\n",
			req.Description, exportName(stem), stem, req.Description)
		return &InvokeResponse{
			Files:    []GeneratedFile{{Path: path, Content: content}},
			Metadata: map[string]string{"template": "feature"},
		}, nil

	case plan.TaskTypeTestGen:
		return &InvokeResponse{
			Files: []GeneratedFile{
				{Path: "src/app.test.tsx", Content: "import { App } from './app'\n\ntest('renders the app shell', () => {\n  expect(App).toBeDefined()\n})\n"},
			},
			Metadata: map[string]string{"template": "test"},
		}, nil

	case plan.TaskTypeDocs:
		return &InvokeResponse{
			Files: []GeneratedFile{
				{Path: "README.md", Content: fmt.Sprintf("# Generated Project\n\n%s\n", req.Description)},
			},
			Metadata: map[string]string{"template": "docs"},
		}, nil

	case plan.TaskTypePlan, plan.TaskTypeValidate, plan.TaskTypeReasoning:
		return &InvokeResponse{
			Files:    nil,
			Metadata: map[string]string{"template": "noop"},
		}, nil

	default:
		return &InvokeResponse{
			Errors: []string{fmt.Sprintf("template engine has no recipe for task type %q", req.TaskType)},
		}, nil
	}
}

// RegisterBuiltins populates a registry with the default engine set.
func RegisterBuiltins(r *Registry) {
	r.Register(Config{
		Name:       "template",
		TaskTypes:  plan.AllTaskTypes(),
		Fast:       true,
		CostWeight: 1.0,
		Priority:   10,
		Client:     NewTemplateEngine(),
	})
}

func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "feature"
	}
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	return slug
}

func exportName(slug string) string {
	parts := strings.Split(slug, "-")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if b.Len() == 0 {
		return "Feature"
	}
	return b.String()
}
