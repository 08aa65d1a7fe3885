//go:build cgo && jemalloc

package main

import (
	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/backend/jemalloc"
)

func openBackend() (alloc.Backend, func(), error) {
	h, err := jemalloc.New()
	if err != nil {
		return nil, nil, err
	}
	return h, func() {}, nil
}
