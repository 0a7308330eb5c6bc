package types

import "context"

type executionContextKey string

// ExecutionContextKey execution context
var ExecutionContextKey = executionContextKey("execution-context")

// PrincipalKey names the acting user in the execution context
const PrincipalKey = "principal"

// EnsureExecutionContext returns ctx carrying an execution context map with pairs applied
func EnsureExecutionContext(ctx context.Context, pairs ...string) context.Context {
	values, ok := ctx.Value(ExecutionContextKey).(map[string]any)
	if !ok {
		values = map[string]any{}
	} else {
		clone := make(map[string]any, len(values)+len(pairs)/2)
		for k, v := range values {
			clone[k] = v
		}
		values = clone
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		values[pairs[i]] = pairs[i+1]
	}
	return context.WithValue(ctx, ExecutionContextKey, values)
}

// WithPrincipal returns ctx carrying the acting user
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return EnsureExecutionContext(ctx, PrincipalKey, principal)
}

// PrincipalFrom returns the acting user, empty when not set
func PrincipalFrom(ctx context.Context) string {
	values, ok := ctx.Value(ExecutionContextKey).(map[string]any)
	if !ok {
		return ""
	}
	principal, _ := values[PrincipalKey].(string)
	return principal
}
