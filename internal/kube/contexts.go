package kube

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/client-go/tools/clientcmd"

	"podscope/pkg/logging"
)

// Context is one selectable kubeconfig context. A single kubeconfig
// file can carry several contexts; each becomes its own entry.
type Context struct {
	// DisplayName is what the UI shows. Derived from the kubeconfig
	// filename suffix ("config.eagle-i-orc" -> "eagle-i-orc"); falls
	// back to the context name when the file is just "config".
	DisplayName string
	// ContextName is the context name stored inside the kubeconfig
	// file. Always passed as --context to kubectl subprocesses.
	ContextName string
	// SourceFile is the absolute path of the kubeconfig file owning
	// this context. Always passed as --kubeconfig to subprocesses.
	SourceFile string
	Cluster    string
	User       string
	IsActive   bool
	// ServerURL is the API server address, used for health checks.
	ServerURL string
}

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

// DefaultConfigDir returns the directory scanned for kubeconfig files.
func DefaultConfigDir() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".kube"), nil
}

// DiscoverContexts scans dir for kubeconfig files (any file named
// "config" or "config.<suffix>") and returns every context found in
// them, sorted by display name. An empty dir means the default ~/.kube.
func DiscoverContexts(dir string) ([]Context, error) {
	if dir == "" {
		var err error
		dir, err = DefaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read kubeconfig directory %s: %w", dir, err)
	}

	var contexts []Context
	for _, entry := range entries {
		if entry.IsDir() || !isKubeconfigName(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		found, err := contextsFromFile(path)
		if err != nil {
			// A malformed file should not hide the others.
			logging.Warn("Kube", "skipping kubeconfig %s: %v", path, err)
			continue
		}
		contexts = append(contexts, found...)
	}

	sort.Slice(contexts, func(i, j int) bool {
		return contexts[i].DisplayName < contexts[j].DisplayName
	})
	return contexts, nil
}

// isKubeconfigName reports whether a filename looks like a kubeconfig:
// "config" itself or "config.<suffix>".
func isKubeconfigName(name string) bool {
	return name == "config" || strings.HasPrefix(name, "config.")
}

func contextsFromFile(path string) ([]Context, error) {
	cfg, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	var contexts []Context
	for name, kctx := range cfg.Contexts {
		c := Context{
			DisplayName: displayNameFor(filepath.Base(path), name),
			ContextName: name,
			SourceFile:  path,
			Cluster:     kctx.Cluster,
			User:        kctx.AuthInfo,
			IsActive:    name == cfg.CurrentContext,
		}
		if cluster, ok := cfg.Clusters[kctx.Cluster]; ok {
			c.ServerURL = cluster.Server
		}
		contexts = append(contexts, c)
	}
	return contexts, nil
}

// displayNameFor derives the UI name from the kubeconfig filename:
// "config.eagle-i-orc" -> "eagle-i-orc". A bare "config" file has no
// suffix to use, so the context name is shown instead.
func displayNameFor(fileName, contextName string) string {
	if suffix, ok := strings.CutPrefix(fileName, "config."); ok && suffix != "" {
		return suffix
	}
	return contextName
}
