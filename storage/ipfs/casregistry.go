package ipfs

import (
	"flag"
	"os"

	"xdao.co/fingerprint/storage"
	"xdao.co/fingerprint/storage/casregistry"
)

var (
	flagBin  string
	flagPath string
)

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "ipfs",
		Description: "Local Kubo repo via the ipfs CLI (offline)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagBin, "ipfs-bin", "", "ipfs binary (for --backend=ipfs; default \"ipfs\")")
			fs.StringVar(&flagPath, "ipfs-path", "", "IPFS_PATH of the repo (for --backend=ipfs)")
		},
		Open: func(opts casregistry.Options) (storage.CAS, func() error, error) {
			o := Options{Bin: opts.Setting("bin", flagBin)}
			if p := opts.Setting("path", flagPath); p != "" {
				o.Env = append(os.Environ(), "IPFS_PATH="+p)
			}
			cas, err := New(opts.Algorithm, o)
			return cas, nil, err
		},
	})
}
