package discovery

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	discoveryv1 "k8s.io/api/discovery/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

var serviceNameReplacer = strings.NewReplacer("_", "-", ".", "-")

// EndpointsResolver finds seed hosts from the EndpointSlices of the
// Kubernetes Service named after a cluster
type EndpointsResolver struct {
	clientset kubernetes.Interface
	namespace string
	logger    *zap.Logger
}

// NewEndpointsResolver creates a resolver that looks up services in namespace
func NewEndpointsResolver(clientset kubernetes.Interface, namespace string, logger *zap.Logger) *EndpointsResolver {
	return &EndpointsResolver{
		clientset: clientset,
		namespace: namespace,
		logger:    logger.Named("seed-resolver"),
	}
}

// newClientset builds a clientset from a kubeconfig path, or from the
// in-cluster service account when the path is empty
func newClientset(kubeconfig string) (kubernetes.Interface, error) {
	var (
		config *rest.Config
		err    error
	)
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	return clientset, nil
}

// ServiceName maps a canonical cluster name onto a DNS-1035 service name
func ServiceName(clusterName string) string {
	return serviceNameReplacer.Replace(clusterName)
}

// ResolveSeedHosts returns the sorted addresses of ready endpoints backing
// the cluster's service. No matching service yields an empty result.
func (r *EndpointsResolver) ResolveSeedHosts(ctx context.Context, clusterName string) ([]string, error) {
	service := ServiceName(clusterName)
	endpointSlices, err := r.clientset.DiscoveryV1().EndpointSlices(r.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: discoveryv1.LabelServiceName + "=" + service,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list endpoint slices for %s/%s: %w", r.namespace, service, err)
	}

	var hosts []string
	for _, slice := range endpointSlices.Items {
		for _, endpoint := range slice.Endpoints {
			if endpoint.Conditions.Ready != nil && !*endpoint.Conditions.Ready {
				continue
			}
			hosts = append(hosts, endpoint.Addresses...)
		}
	}
	slices.Sort(hosts)
	hosts = slices.Compact(hosts)

	r.logger.Debug("Resolved seed hosts",
		zap.String("cluster", clusterName),
		zap.String("service", service),
		zap.Strings("hosts", hosts))

	return hosts, nil
}
