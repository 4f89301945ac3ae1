package xmain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"
)

// Opts registers flags whose defaults may come from environment variables.
// Flags always win over the environment.
type Opts struct {
	Args  []string
	Flags *pflag.FlagSet
	env   *xos.Env
	log   *cmdlog.Logger

	envKeys []string
}

func NewOpts(env *xos.Env, log *cmdlog.Logger, args []string) *Opts {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)
	return &Opts{
		Args:  args,
		Flags: flags,
		env:   env,
		log:   log,
	}
}

// Help prints the flag defaults followed by the environment variables
// registered so far.
func (o *Opts) Help() string {
	var b strings.Builder
	o.Flags.SetOutput(&b)
	o.Flags.PrintDefaults()
	o.Flags.SetOutput(io.Discard)

	if len(o.envKeys) == 0 {
		return b.String()
	}
	b.WriteString("\nYou may persistently set the following as environment variables (flags take precedent):\n")
	for i, k := range o.envKeys {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  - $%s", k)
	}
	return b.String()
}

func (o *Opts) lookupEnv(k string) string {
	if k == "" {
		return ""
	}
	o.envKeys = append(o.envKeys, k)
	return o.env.Getenv(k)
}

// envDefault replaces def with the parsed value of envKey when it is set.
func envDefault[T any](o *Opts, envKey, kind string, def T, parse func(string) (T, bool)) (T, error) {
	v := o.lookupEnv(envKey)
	if v == "" {
		return def, nil
	}
	parsed, ok := parse(v)
	if !ok {
		return def, fmt.Errorf(`invalid environment variable %s. Expected %s. Found "%v".`, envKey, kind, v)
	}
	return parsed, nil
}

func (o *Opts) Int64(envKey, flag, shortFlag string, defaultVal int64, usage string) (*int64, error) {
	def, err := envDefault(o, envKey, "int64", defaultVal, func(s string) (int64, bool) {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	})
	if err != nil {
		return nil, err
	}
	return o.Flags.Int64P(flag, shortFlag, def, usage), nil
}

func (o *Opts) String(envKey, flag, shortFlag string, defaultVal, usage string) *string {
	if v := o.lookupEnv(envKey); v != "" {
		defaultVal = v
	}
	return o.Flags.StringP(flag, shortFlag, defaultVal, usage)
}

// StringSlice reads a comma separated environment value.
func (o *Opts) StringSlice(envKey, flag, shortFlag string, defaultVal []string, usage string) *[]string {
	if v := o.lookupEnv(envKey); v != "" {
		defaultVal = strings.Split(v, ",")
	}
	return o.Flags.StringSliceP(flag, shortFlag, defaultVal, usage)
}

// Bool accepts 1, true, 0 and false from the environment.
func (o *Opts) Bool(envKey, flag, shortFlag string, defaultVal bool, usage string) (*bool, error) {
	def, err := envDefault(o, envKey, "bool", defaultVal, func(s string) (bool, bool) {
		switch s {
		case "1", "true":
			return true, true
		case "0", "false":
			return false, true
		}
		return false, false
	})
	if err != nil {
		return nil, err
	}
	return o.Flags.BoolP(flag, shortFlag, def, usage), nil
}
