// Package mcptools exposes podscope's cluster inspection surface as MCP
// tools, so LLM clients can list pods, describe them and fetch logs
// over a stdio transport.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	corev1 "k8s.io/api/core/v1"

	"podscope/internal/backend"
	"podscope/internal/events"
	"podscope/internal/inspect"
	"podscope/internal/kube"
)

// InspectionTools bundles the MCP tool definitions and their handlers.
type InspectionTools struct {
	configDir string
	backend   *backend.Service
}

// New creates inspection tools scanning the given kubeconfig directory
// (empty means the default ~/.kube).
func New(configDir string) *InspectionTools {
	return &InspectionTools{
		configDir: configDir,
		// The bus is unused for one-shot describe calls but the backend
		// service requires one.
		backend: backend.NewService(events.NewBus()),
	}
}

// ServerTools returns the tools to register on an MCP server.
func (t *InspectionTools) ServerTools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("list_contexts",
				mcp.WithDescription("List the kubeconfig contexts podscope can inspect"),
			),
			Handler: t.handleListContexts,
		},
		{
			Tool: mcp.NewTool("list_pods",
				mcp.WithDescription("List pods in a namespace"),
				mcp.WithString("context",
					mcp.Description("Context name; defaults to the active context"),
				),
				mcp.WithString("namespace",
					mcp.Required(),
					mcp.Description("Namespace to list pods in"),
				),
			),
			Handler: t.handleListPods,
		},
		{
			Tool: mcp.NewTool("describe_pod",
				mcp.WithDescription("Run kubectl describe on a pod"),
				mcp.WithString("context",
					mcp.Description("Context name; defaults to the active context"),
				),
				mcp.WithString("namespace",
					mcp.Required(),
					mcp.Description("Namespace of the pod"),
				),
				mcp.WithString("pod",
					mcp.Required(),
					mcp.Description("Pod name"),
				),
			),
			Handler: t.handleDescribePod,
		},
		{
			Tool: mcp.NewTool("pod_logs",
				mcp.WithDescription("Fetch the most recent log lines of a pod"),
				mcp.WithString("context",
					mcp.Description("Context name; defaults to the active context"),
				),
				mcp.WithString("namespace",
					mcp.Required(),
					mcp.Description("Namespace of the pod"),
				),
				mcp.WithString("pod",
					mcp.Required(),
					mcp.Description("Pod name"),
				),
				mcp.WithNumber("tail",
					mcp.Description("Number of trailing lines to return (default 100)"),
				),
			),
			Handler: t.handlePodLogs,
		},
	}
}

// resolveContext finds a discovered context by name, or the active one
// (falling back to the first) when name is empty.
func (t *InspectionTools) resolveContext(name string) (kube.Context, error) {
	dir := t.configDir
	if dir == "" {
		var err error
		dir, err = kube.DefaultConfigDir()
		if err != nil {
			return kube.Context{}, err
		}
	}
	contexts, err := kube.DiscoverContexts(dir)
	if err != nil {
		return kube.Context{}, err
	}
	if len(contexts) == 0 {
		return kube.Context{}, fmt.Errorf("no kubeconfig contexts found in %s", dir)
	}

	if name == "" {
		for _, kctx := range contexts {
			if kctx.IsActive {
				return kctx, nil
			}
		}
		return contexts[0], nil
	}
	for _, kctx := range contexts {
		if kctx.ContextName == name || kctx.DisplayName == name {
			return kctx, nil
		}
	}
	return kube.Context{}, fmt.Errorf("context %q not found", name)
}

func (t *InspectionTools) handleListContexts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := t.configDir
	if dir == "" {
		var err error
		dir, err = kube.DefaultConfigDir()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	contexts, err := kube.DiscoverContexts(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(contexts)
}

func (t *InspectionTools) handleListPods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace, ok := stringArg(req, "namespace")
	if !ok {
		return mcp.NewToolResultError("namespace parameter is required"), nil
	}
	contextName, _ := stringArg(req, "context")

	kctx, err := t.resolveContext(contextName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := kube.ClientFor(kctx.SourceFile, kctx.ContextName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pods, err := kube.ListPods(ctx, client, namespace)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(pods)
}

func (t *InspectionTools) handleDescribePod(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, result := t.targetFromRequest(req)
	if result != nil {
		return result, nil
	}
	out, err := t.backend.Describe(ctx, target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (t *InspectionTools) handlePodLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, result := t.targetFromRequest(req)
	if result != nil {
		return result, nil
	}

	tail := int64(100)
	if v, ok := req.GetArguments()["tail"].(float64); ok && v > 0 {
		tail = int64(v)
	}

	client, err := kube.ClientFor(target.SourceFile, target.ContextName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := client.CoreV1().Pods(target.Namespace).
		GetLogs(target.PodName, &corev1.PodLogOptions{TailLines: &tail}).
		Do(ctx).Raw()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching logs for %s/%s: %v", target.Namespace, target.PodName, err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// targetFromRequest builds an inspection target from the common
// context/namespace/pod parameters. A non-nil result is the error to
// return to the client.
func (t *InspectionTools) targetFromRequest(req mcp.CallToolRequest) (inspect.Target, *mcp.CallToolResult) {
	namespace, ok := stringArg(req, "namespace")
	if !ok {
		return inspect.Target{}, mcp.NewToolResultError("namespace parameter is required")
	}
	pod, ok := stringArg(req, "pod")
	if !ok {
		return inspect.Target{}, mcp.NewToolResultError("pod parameter is required")
	}
	contextName, _ := stringArg(req, "context")

	kctx, err := t.resolveContext(contextName)
	if err != nil {
		return inspect.Target{}, mcp.NewToolResultError(err.Error())
	}
	return inspect.Target{
		PodName:     pod,
		Namespace:   namespace,
		SourceFile:  kctx.SourceFile,
		ContextName: kctx.ContextName,
	}, nil
}

func stringArg(req mcp.CallToolRequest, name string) (string, bool) {
	v, ok := req.GetArguments()[name].(string)
	return v, ok && v != ""
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
