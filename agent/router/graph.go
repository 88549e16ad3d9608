package router

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (r *Router) compileHandleQueryGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("classify_query",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*flowState, error) {
			return classifyQuery(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify_query: %w", err)
	}

	if err := graph.AddLambdaNode("fetch_context",
		compose.InvokableLambda(func(ctx context.Context, in *flowState) (*flowState, error) {
			return r.fetchContext(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node fetch_context: %w", err)
	}

	if err := graph.AddLambdaNode("support_dialog",
		compose.InvokableLambda(func(ctx context.Context, in *flowState) (*flowState, error) {
			return r.supportDialog(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node support_dialog: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_answer",
		compose.InvokableLambda(func(ctx context.Context, in *flowState) (GraphOutput, error) {
			return finalizeAnswer(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_answer: %w", err)
	}

	edges := [][2]string{
		{compose.START, "classify_query"},
		{"classify_query", "fetch_context"},
		{"fetch_context", "support_dialog"},
		{"support_dialog", "finalize_answer"},
		{"finalize_answer", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("router.handle_query"))
	if err != nil {
		return nil, fmt.Errorf("compile router graph: %w", err)
	}
	return runner, nil
}
