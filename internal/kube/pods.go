package kube

import (
	"context"
	"fmt"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/duration"
	"k8s.io/client-go/kubernetes"
)

// PodSummary is the row shown in the pod list.
type PodSummary struct {
	Name      string
	Namespace string
	Status    string
	Ready     string
	Restarts  int32
	Age       string
	Node      string
	Labels    map[string]string
}

const podListLimit = 500

// ListPods lists pods in the given namespace. An empty namespace lists
// across all namespaces.
func ListPods(ctx context.Context, client kubernetes.Interface, namespace string) ([]PodSummary, error) {
	podList, err := client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{Limit: podListLimit})
	if err != nil {
		return nil, fmt.Errorf("listing pods in %q: %w", namespace, err)
	}

	pods := make([]PodSummary, 0, len(podList.Items))
	for _, pod := range podList.Items {
		pods = append(pods, summarize(pod))
	}
	return pods, nil
}

// ListNamespaces returns all namespace names, sorted.
func ListNamespaces(ctx context.Context, client kubernetes.Interface) ([]string, error) {
	nsList, err := client.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}

	names := make([]string, 0, len(nsList.Items))
	for _, ns := range nsList.Items {
		names = append(names, ns.Name)
	}
	sort.Strings(names)
	return names, nil
}

func summarize(pod corev1.Pod) PodSummary {
	ready, total := readyCount(pod)
	var restarts int32
	for _, cs := range pod.Status.ContainerStatuses {
		restarts += cs.RestartCount
	}

	return PodSummary{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Status:    podStatus(pod),
		Ready:     fmt.Sprintf("%d/%d", ready, total),
		Restarts:  restarts,
		Age:       duration.HumanDuration(time.Since(pod.CreationTimestamp.Time)),
		Node:      pod.Spec.NodeName,
		Labels:    pod.Labels,
	}
}

func readyCount(pod corev1.Pod) (ready, total int) {
	total = len(pod.Spec.Containers)
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
	}
	return ready, total
}

// podStatus prefers the waiting/terminated reason of a broken container
// over the bare phase, so states like CrashLoopBackOff show up in the
// list the way kubectl shows them.
func podStatus(pod corev1.Pod) string {
	if pod.DeletionTimestamp != nil {
		return "Terminating"
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			return cs.State.Waiting.Reason
		}
		if cs.State.Terminated != nil && cs.State.Terminated.Reason != "" && pod.Status.Phase != corev1.PodSucceeded {
			return cs.State.Terminated.Reason
		}
	}
	return string(pod.Status.Phase)
}
