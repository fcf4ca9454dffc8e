package deferinloop

import (
	"os"
	"sync"
)

func closeAll(paths []string) {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		defer f.Close() // ruletest:expect "defer inside loop runs only when the function returns"
	}
}

func locked(mu *sync.Mutex, n int) {
	for i := 0; i < n; i++ {
		mu.Lock()
		// ruletest:expect-next-line
		defer mu.Unlock()
	}
}

func perIteration(paths []string) {
	for _, p := range paths {
		func() {
			f, err := os.Open(p)
			if err != nil {
				return
			}
			defer f.Close()
		}()
	}
}

func once(p string) {
	f, err := os.Open(p)
	if err != nil {
		return
	}
	defer f.Close()
}
