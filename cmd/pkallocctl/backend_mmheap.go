//go:build !(cgo && jemalloc)

package main

import (
	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/backend/mmheap"
)

func openBackend() (alloc.Backend, func(), error) {
	opts, err := mmheap.OptionsFromEnv()
	if err != nil {
		return nil, nil, err
	}
	h, err := mmheap.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return h, func() { _ = h.Close() }, nil
}
