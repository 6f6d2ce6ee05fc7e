package config

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Configuration loads the first existing file in paths with loader, like
// kong.Configuration, but a value from the file never replaces one taken from
// a flag's environment variable. Precedence is flag > env > file > default, so
// a checked-in config cannot shadow OUT_DIR or PROTOC handed over by the build.
func Configuration(loader kong.ConfigurationLoader, paths ...string) kong.Option {
	return kong.OptionFunc(func(k *kong.Kong) error {
		for _, path := range paths {
			f, err := os.Open(kong.ExpandPath(path))
			if err != nil {
				if os.IsNotExist(err) || os.IsPermission(err) {
					continue
				}
				return err
			}
			r, err := loader(f)
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if r == nil {
				return nil
			}
			return kong.Resolvers(envFirst{r}).Apply(k)
		}
		return nil
	})
}

type envFirst struct {
	kong.Resolver
}

func (e envFirst) Resolve(ctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	for _, env := range flag.Envs {
		if _, ok := os.LookupEnv(env); ok {
			return nil, nil
		}
	}
	return e.Resolver.Resolve(ctx, parent, flag)
}
