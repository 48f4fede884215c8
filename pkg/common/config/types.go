package config

// Config is the optional configuration file of the server. Command line
// flags take precedence over the values set here.
type Config struct {
	Global struct {
		Namespace  string `gcfg:"namespace"`
		Kubeconfig string `gcfg:"kubeconfig"`
		Master     string `gcfg:"master"`
	}
	Server struct {
		Address         string  `gcfg:"address"`
		MetricsAddress  string  `gcfg:"metrics-address"`
		ProfilerAddress string  `gcfg:"profiler-address"`
		ClientQPS       float32 `gcfg:"client-qps"`
		ClientBurst     int     `gcfg:"client-burst"`
	}
	Logging struct {
		Level  string `gcfg:"level"`
		Format string `gcfg:"format"`
	}
}
