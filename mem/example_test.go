package mem_test

import (
	"fmt"

	"github.com/dacapoday/finarc/mem"
)

func Example() {
	f := mem.New()

	// Write some data
	f.Write([]byte("hello"))

	// A clone shares the data but has its own cursor
	g, _ := f.Clone()
	g.Write([]byte("world"))

	// Read it back through the original
	buf := make([]byte, 10)
	n, _ := f.ReadAt(buf, 0)
	fmt.Printf("%s\n", buf[:n])

	// Check file size
	fmt.Printf("Size: %d\n", f.Size())

	// Close once, for every copy
	fmt.Println(f.Close(), g.Close())

	// Output:
	// helloworld
	// Size: 10
	// <nil> closed
}
