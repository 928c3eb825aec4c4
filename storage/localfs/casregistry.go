package localfs

import (
	"flag"
	"fmt"

	"xdao.co/fingerprint/storage"
	"xdao.co/fingerprint/storage/casregistry"
)

var flagLocalDir string

func init() {
	casregistry.MustRegister(casregistry.Backend{
		Name:        "localfs",
		Description: "Local filesystem CAS (directory)",
		Usage:       casregistry.UsageCLI | casregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "LocalFS CAS directory (for --backend=localfs)")
		},
		Open: func(opts casregistry.Options) (storage.CAS, func() error, error) {
			dir := opts.Setting("dir", flagLocalDir)
			if dir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			cas, err := New(dir, opts.Algorithm)
			return cas, nil, err
		},
	})
}
