package config

import "xdao.co/fingerprint/digest"

const (
	defaultConfigPath  = "~/.config/fingerprint/config.toml"
	projectConfigName  = "fingerprint.toml"
	defaultStoreDir    = "~/.local/share/fingerprint/cas"
	defaultKeysDir     = "~/.xdao/fingerprint/keys"
	defaultBackend     = "localfs"
	defaultWritePolicy = "first"
	defaultListen      = "127.0.0.1:7443"
	defaultLogFormat   = "auto"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Fingerprint: Fingerprint{
			Algorithm: digest.Default,
		},
		Store: Store{
			Backend:     defaultBackend,
			Dir:         defaultStoreDir,
			WritePolicy: defaultWritePolicy,
		},
		Keys: Keys{
			Dir: defaultKeysDir,
		},
		Server: Server{
			Listen: defaultListen,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

const sampleConfig = `# fingerprint configuration

[fingerprint]
# Digest used for sums and CIDs. List choices with: fingerprint algs
algorithm = "blake2s-256"
# Domain separation string written before every value (optional).
# prefix = "myapp/v1"
# Wrap every value as (version, value) (optional).
# version = "1"

[store]
backend = "localfs"
dir = "~/.local/share/fingerprint/cas"
# grpc_target = "127.0.0.1:7443"
# write_policy = "first" # or "all"

# Several backends at once:
# [[store.backends]]
# name = "localfs"
# config = { dir = "/var/lib/fingerprint/cas" }
#
# [[store.backends]]
# name = "grpc"
# id = "mirror"
# config = { target = "cas.internal:7443" }

[keys]
dir = "~/.xdao/fingerprint/keys"

[server]
listen = "127.0.0.1:7443"
# max_msg_bytes = 16777216

[logging]
format = "auto" # auto, console or json
level = "info"
`
