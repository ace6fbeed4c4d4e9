package plan

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// Fingerprint computes a stable blake3 digest over the semantic content of
// a plan: objectives and the task DAG, excluding ids and timestamps that
// vary between builds. Two plans built from the same prompt share a
// fingerprint, which the audit trail uses to correlate retries.
func Fingerprint(p *Plan) string {
	h := blake3.New()

	for _, obj := range p.Objectives {
		fmt.Fprintf(h, "objective:%s\n", obj)
	}
	for _, task := range p.Tasks {
		deps := make([]string, len(task.DependsOn))
		for i, dep := range task.DependsOn {
			deps[i] = dep.String()
		}
		fmt.Fprintf(h, "task:%s|%s|%d|%s\n", task.ID, task.Type, task.Priority, strings.Join(deps, ","))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// HashContent computes the blake3 digest of a generated artifact's content.
func HashContent(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
