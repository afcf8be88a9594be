package pipeline

import "context"

type ctxKey string

const WorkflowIDKey ctxKey = "workflow_execution_id"

func WorkflowIDFromContext(ctx context.Context) string {
	if v := ctx.Value(WorkflowIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithWorkflowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, WorkflowIDKey, id)
}
