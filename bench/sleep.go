package bench

import "time"

// sleepSeconds blocks for exactly the given number of seconds, holding
// the measurement window open while workers run.
func sleepSeconds(seconds float64) {
	time.Sleep(time.Duration(seconds * float64(time.Second)))
}
