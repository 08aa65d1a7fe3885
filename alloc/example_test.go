package alloc_test

import (
	"fmt"

	"github.com/joshuapare/pkalloc/alloc"
	"github.com/joshuapare/pkalloc/backend/mmheap"
	"github.com/joshuapare/pkalloc/internal/buf"
)

func Example() {
	heap, err := mmheap.New(nil)
	if err != nil {
		panic(err)
	}
	defer heap.Close()

	a, err := alloc.New(heap, nil)
	if err != nil {
		panic(err)
	}

	p := a.AllocZeroed(256, 64)
	fmt.Println(uintptr(p)%64 == 0, buf.IsZero(buf.Bytes(p, 256)))

	p = a.Realloc(p, alloc.Layout{Size: 256, Align: 64}, 1024)
	a.Dealloc(p, 1024, 64)
	// Output: true true
}

func ExampleFlagsFor() {
	fmt.Println(alloc.FlagsFor(8, 64))
	fmt.Println(alloc.FlagsFor(4096, 100))
	// Output:
	// 0
	// 12
}
