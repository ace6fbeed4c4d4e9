package auto

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forgeflow/forgeflow/internal/engine"
)

const (
	outputDirPerm  = 0o750
	outputFilePerm = 0o600
	contextDump    = "session.yaml"
)

// writeArtifacts persists a successful result's generated files under the
// session output directory. Write failures never abort the run; they are
// recorded on the audit trail. There is no rollback: artifacts from
// completed tasks stay on disk even if the run later fails.
func (o *Orchestrator) writeArtifacts(result engine.ExecutionResult) {
	for _, file := range result.GeneratedFiles {
		path, ok := artifactPath(o.context.OutputDir, file.Path)
		if !ok {
			o.emit(EventError, "artifact path escapes output directory", map[string]string{
				"task": result.TaskID.String(),
				"path": file.Path,
			})
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), outputDirPerm); err != nil {
			o.emit(EventError, "create artifact directory: "+err.Error(), map[string]string{
				"task": result.TaskID.String(),
				"path": path,
			})
			continue
		}
		if err := os.WriteFile(path, []byte(file.Content), outputFilePerm); err != nil {
			o.emit(EventError, "write artifact: "+err.Error(), map[string]string{
				"task": result.TaskID.String(),
				"path": path,
			})
			continue
		}
	}
}

// artifactPath resolves a backend-supplied file name under root. Names
// that resolve outside root (absolute paths, ".." segments) are rejected:
// backends only ever write inside the session output directory.
func artifactPath(root, name string) (string, bool) {
	path := filepath.Join(root, name)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}

// contextDumpFile is the YAML snapshot written next to the artifacts once
// a run terminates, pairing the audit trail with the session context.
type contextDumpFile struct {
	Context *AutomationContext `yaml:"context"`
	Events  []Event            `yaml:"events"`
}

// dumpContext writes the terminal session snapshot. Best-effort: a dump
// failure is logged, never surfaced to the caller.
func (o *Orchestrator) dumpContext() {
	if o.context == nil || o.context.OutputDir == "" {
		return
	}
	if err := os.MkdirAll(o.context.OutputDir, outputDirPerm); err != nil {
		o.logger.Warn("create output directory", "error", err.Error())
		return
	}

	data, err := yaml.Marshal(contextDumpFile{Context: o.context, Events: o.events})
	if err != nil {
		o.logger.Warn("marshal session dump", "error", err.Error())
		return
	}
	path := filepath.Join(o.context.OutputDir, contextDump)
	if err := os.WriteFile(path, data, outputFilePerm); err != nil {
		o.logger.Warn("write session dump", "error", err.Error())
	}
}
