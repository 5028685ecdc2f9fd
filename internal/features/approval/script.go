package approval

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
)

// evalCriteriaScript runs a policy's Tengo criteria against the entity data.
// The script sees `entity` (map) and `module` (string) and must assign its
// verdict to `match`. A script error disqualifies the policy.
func evalCriteriaScript(ctx context.Context, scriptContent string, module Module, data map[string]interface{}) (bool, error) {
	if scriptContent == "" {
		return true, nil
	}

	script := tengo.NewScript([]byte(scriptContent))

	script.Add("entity", data)
	script.Add("module", string(module))

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return false, fmt.Errorf("criteria script failed: %w", err)
	}

	match := compiled.Get("match")
	if match.IsUndefined() {
		return false, fmt.Errorf("criteria script did not set 'match'")
	}
	return match.Bool(), nil
}
