/*
Copyright 2020 the Velero contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/velero-ui/velero-ui/pkg/apiserver"
	"github.com/velero-ui/velero-ui/pkg/buildinfo"
	"github.com/velero-ui/velero-ui/pkg/cmd"
	"github.com/velero-ui/velero-ui/pkg/common/config"
	"github.com/velero-ui/velero-ui/pkg/metrics"
	"github.com/velero-ui/velero-ui/pkg/utils"
	"github.com/vmware-tanzu/velero/pkg/client"
	"github.com/vmware-tanzu/velero/pkg/cmd/util/signals"
	"github.com/vmware-tanzu/velero/pkg/util/logging"
	apiextensionsclient "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const shutdownTimeout = 30 * time.Second

type serverConfig struct {
	address         string
	metricsAddress  string
	clientQPS       float32
	clientBurst     int
	profilerAddress string
	logLevelFlag    *logging.LevelFlag
	formatFlag      *logging.FormatFlag
	master          string
	kubeConfig      string
}

func NewCommand(f client.Factory) *cobra.Command {
	var (
		config = serverConfig{
			address:         cmd.DefaultAddress,
			metricsAddress:  cmd.DefaultMetricsAddress,
			clientQPS:       cmd.DefaultClientQPS,
			clientBurst:     cmd.DefaultClientBurst,
			profilerAddress: cmd.DefaultProfilerAddress,
			logLevelFlag:    logging.LogLevelFlag(logrus.InfoLevel),
			formatFlag:      logging.NewFormatFlag(),
		}
	)

	var command = &cobra.Command{
		Use:   "server",
		Short: "Run the velero-ui API server",
		Long:  "Run the velero-ui API server",
		Run: func(c *cobra.Command, args []string) {
			fileConfig, err := cmd.LoadConfig(c)
			cmd.CheckError(err)
			cmd.CheckError(applyFileConfig(c.Flags(), fileConfig, &config))

			// Make sure we log to stdout so cloud log dashboards don't show this as an error.
			log.SetOutput(os.Stdout)
			logrus.SetOutput(os.Stdout)

			logLevel := config.logLevelFlag.Parse()
			format := config.formatFlag.Parse()

			// Velero's DefaultLogger logs to stdout, so all is good there.
			logger := logging.DefaultLogger(logLevel, format)

			if format == logging.FormatText {
				formatter := new(logrus.TextFormatter)
				formatter.TimestampFormat = time.RFC3339
				formatter.FullTimestamp = true
				logger.SetFormatter(formatter)
			}

			logger.Debugf("setting log-level to %s", strings.ToUpper(logLevel.String()))

			logger.Infof("Starting velero-ui server %s (%s)", buildinfo.Version, buildinfo.FormattedGitSHA())

			f.SetBasename(fmt.Sprintf("%s-%s", c.Parent().Name(), c.Name()))

			namespace := cmd.ResolveNamespace(c.Flags(), f, fileConfig, logger)
			s, err := newServer(f, namespace, config, logger)
			cmd.CheckError(err)

			cmd.CheckError(s.run())
		},
	}

	command.Flags().Var(config.logLevelFlag, "log-level", fmt.Sprintf("the level at which to log. Valid values are %s.", strings.Join(config.logLevelFlag.AllowedValues(), ", ")))
	command.Flags().Var(config.formatFlag, "log-format", fmt.Sprintf("the format for log output. Valid values are %s.", strings.Join(config.formatFlag.AllowedValues(), ", ")))
	command.Flags().StringVar(&config.address, "address", config.address, "the address to serve the API on")
	command.Flags().StringVar(&config.metricsAddress, "metrics-address", config.metricsAddress, "the address to expose prometheus metrics")
	command.Flags().Float32Var(&config.clientQPS, "client-qps", config.clientQPS, "maximum number of requests per second by the server to the Kubernetes API once the burst limit has been reached")
	command.Flags().IntVar(&config.clientBurst, "client-burst", config.clientBurst, "maximum number of requests by the server to the Kubernetes API in a short period of time")
	command.Flags().StringVar(&config.profilerAddress, "profiler-address", config.profilerAddress, "the address to expose the pprof profiler")
	command.Flags().StringVar(&config.master, "master", config.master, "Master URL to build a client config from. Either this or kubeconfig needs to be set if the pod is being run out of cluster.")

	return command
}

// applyFileConfig copies the values of the configuration file into the
// settings whose flags were not set on the command line.
func applyFileConfig(flags *pflag.FlagSet, fileConfig *config.Config, sc *serverConfig) error {
	unset := func(name string) bool {
		flag := flags.Lookup(name)
		return flag == nil || !flag.Changed
	}

	if fileConfig.Global.Master != "" && unset("master") {
		sc.master = fileConfig.Global.Master
	}
	if !unset("kubeconfig") {
		sc.kubeConfig = flags.Lookup("kubeconfig").Value.String()
	} else if fileConfig.Global.Kubeconfig != "" {
		sc.kubeConfig = fileConfig.Global.Kubeconfig
	}
	if fileConfig.Server.Address != "" && unset("address") {
		sc.address = fileConfig.Server.Address
	}
	if fileConfig.Server.MetricsAddress != "" && unset("metrics-address") {
		sc.metricsAddress = fileConfig.Server.MetricsAddress
	}
	if fileConfig.Server.ProfilerAddress != "" && unset("profiler-address") {
		sc.profilerAddress = fileConfig.Server.ProfilerAddress
	}
	if fileConfig.Server.ClientQPS > 0 && unset("client-qps") {
		sc.clientQPS = fileConfig.Server.ClientQPS
	}
	if fileConfig.Server.ClientBurst > 0 && unset("client-burst") {
		sc.clientBurst = fileConfig.Server.ClientBurst
	}
	if fileConfig.Logging.Level != "" && unset("log-level") {
		if err := sc.logLevelFlag.Set(fileConfig.Logging.Level); err != nil {
			return errors.Wrap(err, "invalid log level in config file")
		}
	}
	if fileConfig.Logging.Format != "" && unset("log-format") {
		if err := sc.formatFlag.Set(fileConfig.Logging.Format); err != nil {
			return errors.Wrap(err, "invalid log format in config file")
		}
	}
	return nil
}

type server struct {
	namespace           string
	kubeClient          kubernetes.Interface
	apiExtensionsClient apiextensionsclient.Interface
	ctx                 context.Context
	cancelFunc          context.CancelFunc
	logger              logrus.FieldLogger
	metrics             *metrics.ServerMetrics
	registry            *prometheus.Registry
	config              serverConfig
	apiServer           *http.Server
}

func newServer(f client.Factory, namespace string, config serverConfig, logger *logrus.Logger) (*server, error) {
	clientConfig, err := cmd.BuildConfig(config.master, config.kubeConfig, f)
	if err != nil {
		logger.Errorf("Failed to get client config")
		return nil, err
	}

	clients, err := cmd.NewClients(clientConfig, config.clientQPS, config.clientBurst)
	if err != nil {
		logger.Errorf("Failed to get clients to the current kubernetes cluster")
		return nil, err
	}

	serverMetrics := metrics.NewServerMetrics()
	registry := prometheus.NewRegistry()
	if err := serverMetrics.RegisterAllMetrics(registry); err != nil {
		return nil, err
	}

	o := cmd.NewOrchestrator(clients, namespace, serverMetrics, logger.WithField("namespace", namespace))
	api := apiserver.NewServer(o, serverMetrics, logger)

	ctx, cancelFunc := context.WithCancel(context.Background())

	s := &server{
		namespace:           namespace,
		kubeClient:          clients.Kube,
		apiExtensionsClient: clients.APIExtensions,
		ctx:                 ctx,
		cancelFunc:          cancelFunc,
		logger:              logger,
		metrics:             serverMetrics,
		registry:            registry,
		config:              config,
		apiServer: &http.Server{
			Addr:    config.address,
			Handler: api.Routes(),
		},
	}
	return s, nil
}

func (s *server) run() error {
	signals.CancelOnShutdown(s.cancelFunc, s.logger)

	if s.config.profilerAddress != "" {
		go s.runProfiler()
	}

	// Since s.namespace, which specifies where backups/restores/schedules/etc. live,
	// *could* be different from the namespace where this server runs, check to make
	// sure it exists, and fail fast if it doesn't.
	if err := s.namespaceExists(s.namespace); err != nil {
		return err
	}

	if err := utils.CheckVeleroCRDs(s.ctx, s.apiExtensionsClient, s.logger); err != nil {
		s.logger.WithError(err).Warn("Requests touching missing Velero resources will fail")
	}
	cmd.CheckVeleroVersion(s.ctx, s.kubeClient, s.namespace, s.logger)

	if s.config.metricsAddress != "" {
		go s.runMetricsServer()
	}

	return s.serve()
}

// namespaceExists returns nil if namespace can be successfully
// gotten from the kubernetes API, or an error otherwise.
func (s *server) namespaceExists(namespace string) error {
	s.logger.WithField("namespace", namespace).Info("Checking existence of namespace")

	if _, err := s.kubeClient.CoreV1().Namespaces().Get(s.ctx, namespace, metav1.GetOptions{}); err != nil {
		return errors.WithStack(err)
	}

	s.logger.WithField("namespace", namespace).Info("Namespace exists")
	return nil
}

func (s *server) runProfiler() {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	if err := http.ListenAndServe(s.config.profilerAddress, mux); err != nil {
		s.logger.WithError(errors.WithStack(err)).Error("error running profiler http server")
	}
}

func (s *server) runMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.logger.Infof("Starting metric server at address [%s]", s.config.metricsAddress)
	if err := http.ListenAndServe(s.config.metricsAddress, mux); err != nil {
		s.logger.WithError(errors.WithStack(err)).Error("error running metrics http server")
	}
}

// serve runs the API until the server context is cancelled.
func (s *server) serve() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Serving API at address [%s]", s.config.address)
		if err := s.apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.WithStack(err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-s.ctx.Done():
	}

	s.logger.Info("Shutting down the API server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.apiServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shut down the API server")
	}
	return nil
}
