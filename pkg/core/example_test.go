package core_test

import (
	"fmt"
	"time"

	"github.com/entropy-sentinel/sentinel/pkg/core"
)

func ExampleScan() {
	src := `const apiKey = "aB3$kL9@mN2#pQ5&rS8*tU1!";
let password = "changeme";
const greeting = "hello";`

	for _, f := range core.Scan(src) {
		fmt.Printf("%s %s %q\n", f.Kind, f.Name, src[f.Range.Start:f.Range.End])
	}
	// Output:
	// HIGH_ENTROPY apiKey "aB3$kL9@mN2#pQ5&rS8*tU1!"
	// DUMMY_KEY password "changeme"
}

func ExampleComputeEntropy() {
	fmt.Printf("%.2f\n", core.ComputeEntropy("abcd"))
	// Output: 2.00
}

func ExampleDebounce() {
	done := make(chan struct{})
	rescan := core.Debounce(func() {
		fmt.Println("rescanned once")
		close(done)
	}, 10*time.Millisecond)
	rescan()
	rescan()
	rescan()
	<-done
	// Output: rescanned once
}
