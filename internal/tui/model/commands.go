package model

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"podscope/internal/kube"
	"podscope/pkg/logging"
)

const (
	podRefreshInterval = 5 * time.Second
	healthInterval     = 30 * time.Second
	listTimeout        = 10 * time.Second
)

// DiscoverContextsCmd scans the kubeconfig directory.
func DiscoverContextsCmd(configDir string) tea.Cmd {
	return func() tea.Msg {
		dir := configDir
		if dir == "" {
			var err error
			dir, err = kube.DefaultConfigDir()
			if err != nil {
				return ContextsDiscoveredMsg{Err: err}
			}
		}
		contexts, err := kube.DiscoverContexts(dir)
		return ContextsDiscoveredMsg{Contexts: contexts, Err: err}
	}
}

// LoadNamespacesCmd lists namespaces for the given context.
func LoadNamespacesCmd(kctx kube.Context) tea.Cmd {
	return func() tea.Msg {
		client, err := kube.ClientFor(kctx.SourceFile, kctx.ContextName)
		if err != nil {
			return NamespacesLoadedMsg{ContextName: kctx.ContextName, Err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()
		namespaces, err := kube.ListNamespaces(ctx, client)
		return NamespacesLoadedMsg{ContextName: kctx.ContextName, Namespaces: namespaces, Err: err}
	}
}

// LoadPodsCmd lists pods in the given namespace.
func LoadPodsCmd(kctx kube.Context, namespace string) tea.Cmd {
	return func() tea.Msg {
		client, err := kube.ClientFor(kctx.SourceFile, kctx.ContextName)
		if err != nil {
			return PodsLoadedMsg{ContextName: kctx.ContextName, Namespace: namespace, Err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()
		pods, err := kube.ListPods(ctx, client, namespace)
		return PodsLoadedMsg{ContextName: kctx.ContextName, Namespace: namespace, Pods: pods, Err: err}
	}
}

// ClusterHealthCmd fetches node readiness for the given context.
func ClusterHealthCmd(kctx kube.Context) tea.Cmd {
	return func() tea.Msg {
		client, err := kube.ClientFor(kctx.SourceFile, kctx.ContextName)
		if err != nil {
			return ClusterHealthMsg{ContextName: kctx.ContextName, Err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()
		health, err := kube.ClusterHealth(ctx, client)
		return ClusterHealthMsg{ContextName: kctx.ContextName, Health: health, Err: err}
	}
}

// WaitForLogEntryCmd blocks on the logging channel and re-arms itself
// from the update loop after each delivery.
func WaitForLogEntryCmd(ch <-chan logging.LogEntry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return NewLogEntryMsg{Entry: entry}
	}
}

// PodRefreshTickCmd drives the periodic pod list refresh.
func PodRefreshTickCmd() tea.Cmd {
	return tea.Tick(podRefreshInterval, func(time.Time) tea.Msg {
		return PodRefreshTickMsg{}
	})
}

// HealthTickCmd drives the periodic cluster health refresh.
func HealthTickCmd() tea.Cmd {
	return tea.Tick(healthInterval, func(time.Time) tea.Msg {
		return HealthTickMsg{}
	})
}

// CopyInsightCommandCmd puts a remedial command on the system clipboard.
func CopyInsightCommandCmd(command string) tea.Cmd {
	return func() tea.Msg {
		return InsightCopiedMsg{Command: command, Err: clipboard.WriteAll(command)}
	}
}
