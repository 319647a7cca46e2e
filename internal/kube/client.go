package kube

import (
	"fmt"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientsetFromConfig is a package-level variable for creating a
// clientset from rest.Config. Exported to allow overriding in tests.
var NewClientsetFromConfig = func(c *rest.Config) (kubernetes.Interface, error) {
	return kubernetes.NewForConfig(c)
}

// restConfigTimeout bounds individual API requests issued through the
// clientset. Streaming requests (logs with follow) override this.
const restConfigTimeout = 15 * time.Second

// RestConfigFor builds a rest.Config for the given kubeconfig file and
// context name.
func RestConfigFor(sourceFile, contextName string) (*rest.Config, error) {
	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: sourceFile}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("building rest config for context %q in %s: %w", contextName, sourceFile, err)
	}
	restConfig.Timeout = restConfigTimeout
	return restConfig, nil
}

// ClientFor builds a clientset for the given kubeconfig file and
// context name.
func ClientFor(sourceFile, contextName string) (kubernetes.Interface, error) {
	restConfig, err := RestConfigFor(sourceFile, contextName)
	if err != nil {
		return nil, err
	}
	return NewClientsetFromConfig(restConfig)
}

// StreamingClientFor is ClientFor without the request timeout, for
// long-lived streams such as followed logs.
func StreamingClientFor(sourceFile, contextName string) (kubernetes.Interface, error) {
	restConfig, err := RestConfigFor(sourceFile, contextName)
	if err != nil {
		return nil, err
	}
	restConfig.Timeout = 0
	return NewClientsetFromConfig(restConfig)
}
