package kube

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// NodeHealth represents basic node status for a cluster.
type NodeHealth struct {
	ReadyNodes int
	TotalNodes int
}

// ClusterHealth counts ready vs total nodes for the cluster behind the
// given client. Used by the context list to show reachability.
func ClusterHealth(ctx context.Context, client kubernetes.Interface) (NodeHealth, error) {
	nodes, err := client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return NodeHealth{}, fmt.Errorf("listing nodes: %w", err)
	}

	health := NodeHealth{TotalNodes: len(nodes.Items)}
	for _, node := range nodes.Items {
		for _, cond := range node.Status.Conditions {
			if cond.Type == corev1.NodeReady && cond.Status == corev1.ConditionTrue {
				health.ReadyNodes++
				break
			}
		}
	}
	return health, nil
}
