// Package kube is podscope's cluster surface: it discovers kubeconfig
// contexts from a directory, builds clientsets per (file, context)
// pair, and lists the namespaces, pods and node health the UI browses.
package kube
