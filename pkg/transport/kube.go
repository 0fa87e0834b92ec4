package transport

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/k8sutil"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
	"sigs.k8s.io/yaml"
)

const defaultContainerAnnotation = "kubectl.kubernetes.io/default-container"

// PodExecFunc runs argv in a container of a pod and streams its output.
type PodExecFunc func(ctx context.Context, namespace, pod, container string, argv []string, stdout, stderr io.Writer) error

// Kube executes against pods of a single namespace through the Kubernetes API.
type Kube struct {
	Client    kubernetes.Interface
	Namespace string
	// Filter restricts enumeration to pods whose name contains it (case-insensitive)
	Filter string
	// PodExec is set by NewKube to exec over SPDY
	PodExec PodExecFunc
}

func NewKube(clientConfig *rest.Config, namespace string, filter string) (*Kube, error) {
	client, err := kubernetes.NewForConfig(clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kubernetes client")
	}

	k := &Kube{
		Client:    client,
		Namespace: namespace,
		Filter:    filter,
	}
	k.PodExec = spdyExec(clientConfig, client)
	return k, nil
}

func (k *Kube) ListUnits(ctx context.Context) ([]Unit, error) {
	pods, err := k.Client.CoreV1().Pods(k.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list pods in namespace %s", k.Namespace)
	}

	units := []Unit{}
	for _, pod := range pods.Items {
		if !matchesFilter(pod.Name, k.Filter) {
			continue
		}
		status := StatusOther
		if pod.Status.Phase == corev1.PodRunning {
			status = StatusRunning
		}
		units = append(units, Unit{Name: pod.Name, ID: pod.Name, Status: status})
	}
	return units, nil
}

func (k *Kube) Exec(ctx context.Context, unit Unit, argv []string) ([]byte, []byte, error) {
	if k.PodExec == nil {
		return nil, nil, errors.New("pod exec is not configured")
	}

	container, err := k.defaultContainer(ctx, unit.handle())
	if err != nil {
		return nil, nil, err
	}

	var stdout, stderr bytes.Buffer
	err = k.PodExec(ctx, k.Namespace, unit.handle(), container, argv, &stdout, &stderr)
	if err != nil {
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), &ExitError{Command: argv, ExitCode: exitErr.ExitStatus(), Stderr: stderr.Bytes()}
		}
		return stdout.Bytes(), stderr.Bytes(), errors.Wrapf(err, "failed to exec in pod %s", unit.Name)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// Copy streams a tar archive of remotePath out of the pod, the way kubectl cp does.
func (k *Kube) Copy(ctx context.Context, unit Unit, remotePath string, localDir string) error {
	if k.PodExec == nil {
		return errors.New("pod exec is not configured")
	}

	container, err := k.defaultContainer(ctx, unit.handle())
	if err != nil {
		return err
	}

	remotePath = path.Clean(remotePath)
	command := []string{"tar", "-C", path.Dir(remotePath), "-cf", "-", path.Base(remotePath)}

	pipeReader, pipeWriter := io.Pipe()
	extractErr := make(chan error, 1)
	go func() {
		err := extractTar(pipeReader, localDir)
		if err != nil {
			pipeReader.CloseWithError(err)
		} else {
			// drain the record padding tar writes after the end marker
			io.Copy(io.Discard, pipeReader)
		}
		extractErr <- err
	}()

	var stderr bytes.Buffer
	streamErr := k.PodExec(ctx, k.Namespace, unit.handle(), container, command, pipeWriter, &stderr)
	pipeWriter.CloseWithError(streamErr)

	err = <-extractErr
	if streamErr != nil {
		var exitErr utilexec.ExitError
		if errors.As(streamErr, &exitErr) {
			return &ExitError{Command: command, ExitCode: exitErr.ExitStatus(), Stderr: stderr.Bytes()}
		}
		return errors.Wrapf(streamErr, "failed to copy %s from pod %s", remotePath, unit.Name)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to extract %s from pod %s", remotePath, unit.Name)
	}
	if !stderrIsBenign(stderr.Bytes()) {
		return errors.Errorf("copy %s from pod %s: %s", remotePath, unit.Name, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Logs writes the logs of every init and regular container of the pod to w.
func (k *Kube) Logs(ctx context.Context, unit Unit, w io.Writer) error {
	pod, err := k.Client.CoreV1().Pods(k.Namespace).Get(ctx, unit.handle(), metav1.GetOptions{})
	if err != nil {
		return errors.Wrapf(err, "failed to get pod %s", unit.Name)
	}

	containers := []string{}
	for _, c := range pod.Spec.InitContainers {
		containers = append(containers, c.Name)
	}
	for _, c := range pod.Spec.Containers {
		containers = append(containers, c.Name)
	}

	var errs *multierror.Error
	for _, container := range containers {
		if err := k.containerLogs(ctx, pod.Name, container, w); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (k *Kube) containerLogs(ctx context.Context, pod string, container string, w io.Writer) error {
	req := k.Client.CoreV1().Pods(k.Namespace).GetLogs(pod, &corev1.PodLogOptions{Container: container})
	podLogs, err := req.Stream(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to stream logs of container %s", container)
	}
	defer podLogs.Close()

	if _, err := io.Copy(w, podLogs); err != nil {
		return errors.Wrapf(err, "failed to copy logs of container %s", container)
	}
	return nil
}

type podDescription struct {
	// Status is the STATUS column of kubectl get pods
	Status string         `json:"status"`
	Pod    *corev1.Pod    `json:"pod"`
	Events []corev1.Event `json:"events,omitempty"`
}

// Describe renders the pod and the events that reference it.
func (k *Kube) Describe(ctx context.Context, unit Unit) ([]byte, error) {
	pod, err := k.Client.CoreV1().Pods(k.Namespace).Get(ctx, unit.handle(), metav1.GetOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get pod %s", unit.Name)
	}
	pod.ManagedFields = nil

	description := podDescription{
		Status: k8sutil.GetPodStatusReason(pod),
		Pod:    pod,
	}

	events, err := k.Client.CoreV1().Events(k.Namespace).List(ctx, metav1.ListOptions{
		FieldSelector: "involvedObject.kind=Pod,involvedObject.name=" + pod.Name,
	})
	if err == nil {
		for _, event := range events.Items {
			if event.InvolvedObject.Name == pod.Name {
				description.Events = append(description.Events, event)
			}
		}
	}

	b, err := yaml.Marshal(description)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal pod description")
	}
	return b, nil
}

func (k *Kube) defaultContainer(ctx context.Context, podName string) (string, error) {
	pod, err := k.Client.CoreV1().Pods(k.Namespace).Get(ctx, podName, metav1.GetOptions{})
	if err != nil {
		return "", errors.Wrapf(err, "failed to get pod %s", podName)
	}
	if name := pod.Annotations[defaultContainerAnnotation]; name != "" {
		return name, nil
	}
	if len(pod.Spec.Containers) == 0 {
		return "", errors.Errorf("pod %s has no containers", podName)
	}
	return pod.Spec.Containers[0].Name, nil
}

func spdyExec(clientConfig *rest.Config, client kubernetes.Interface) PodExecFunc {
	return func(ctx context.Context, namespace, pod, container string, argv []string, stdout, stderr io.Writer) error {
		req := client.CoreV1().RESTClient().Post().Resource("pods").Name(pod).Namespace(namespace).SubResource("exec")
		scheme := runtime.NewScheme()
		if err := corev1.AddToScheme(scheme); err != nil {
			return errors.Wrap(err, "failed to add runtime scheme")
		}

		parameterCodec := runtime.NewParameterCodec(scheme)
		req.VersionedParams(&corev1.PodExecOptions{
			Command:   argv,
			Container: container,
			Stdin:     false,
			Stdout:    true,
			Stderr:    true,
			TTY:       false,
		}, parameterCodec)

		exec, err := remotecommand.NewSPDYExecutor(clientConfig, "POST", req.URL())
		if err != nil {
			return errors.Wrap(err, "failed to create SPDY executor")
		}

		return exec.StreamWithContext(ctx, remotecommand.StreamOptions{
			Stdout: stdout,
			Stderr: stderr,
			Tty:    false,
		})
	}
}

// matchesFilter reports whether name contains filter, ignoring case. A filter with glob
// metacharacters must match the whole name instead.
func matchesFilter(name string, filter string) bool {
	if filter == "" {
		return true
	}
	name, filter = strings.ToLower(name), strings.ToLower(filter)
	if !strings.ContainsAny(filter, "*?[{") {
		return strings.Contains(name, filter)
	}
	g, err := glob.Compile(filter)
	if err != nil {
		return strings.Contains(name, filter)
	}
	return g.Match(name)
}
