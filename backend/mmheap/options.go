package mmheap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ConfEnv names the environment variable read by OptionsFromEnv.
const ConfEnv = "PKALLOC_CONF"

// Options configures a Heap. The zero value (or nil) is a plain heap.
type Options struct {
	// Debug junk-fills fresh memory with 0xa5 and freed memory with 0x5a,
	// and checks sized deallocations against the block.
	Debug bool

	// Profile starts with the allocation size histogram enabled. It can be
	// toggled later through the "prof.active" tunable.
	Profile bool
}

// ParseConf parses a comma-separated list of key:value pairs, in the manner
// of MALLOC_CONF. Known keys are "debug" and "profile".
//
//	debug:true,profile:false
func ParseConf(conf string) (*Options, error) {
	opts := &Options{}
	conf = strings.TrimSpace(conf)
	if conf == "" {
		return opts, nil
	}

	for _, pair := range strings.Split(conf, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not key:value", ErrBadConf, pair)
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadConf, key, err)
		}
		switch key {
		case "debug":
			opts.Debug = b
		case "profile":
			opts.Profile = b
		default:
			return nil, fmt.Errorf("%w: unknown key %q", ErrBadConf, key)
		}
	}
	return opts, nil
}

// OptionsFromEnv parses $PKALLOC_CONF.
func OptionsFromEnv() (*Options, error) {
	return ParseConf(os.Getenv(ConfEnv))
}
