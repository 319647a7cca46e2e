package model

import (
	"podscope/internal/kube"
	"podscope/pkg/logging"
)

// ---- Cluster data messages ----

type ContextsDiscoveredMsg struct {
	Contexts []kube.Context
	Err      error
}

type NamespacesLoadedMsg struct {
	ContextName string
	Namespaces  []string
	Err         error
}

type PodsLoadedMsg struct {
	ContextName string
	Namespace   string
	Pods        []kube.PodSummary
	Err         error
}

type ClusterHealthMsg struct {
	ContextName string
	Health      kube.NodeHealth
	Err         error
}

// ---- Controller and logging messages ----

// ControllersChangedMsg is posted by the inspect controllers' notify
// callback whenever visible state changed on a backend goroutine.
type ControllersChangedMsg struct{}

type NewLogEntryMsg struct {
	Entry logging.LogEntry
}

// ---- Periodic refresh ----

type PodRefreshTickMsg struct{}

type HealthTickMsg struct{}

// ---- Clipboard ----

type InsightCopiedMsg struct {
	Command string
	Err     error
}
