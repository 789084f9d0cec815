package configuration

type Configuration struct {
	HttpAddr   string `usage:"HTTP address"`
	Dir        string `usage:"data directory"`
	InMemory   bool   `usage:"volatile storage, nothing touches disk"`
	SyncWrites bool   `usage:"fsync on every commit"`
	LogLevel   string `usage:"log level: debug, info, warn or error"`
	Version    bool   `usage:"show version and exit"`
	ShowConfig bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:   ":8080",
		Dir:        "data",
		SyncWrites: true,
		LogLevel:   "info",
	}
}
