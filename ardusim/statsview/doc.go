// Package statsview serves runtime statistics (goroutines, heap, GC) over
// HTTP while the simulator runs. It is only functional in builds with the
// statsview tag:
//
//	go build -tags statsview ./cmd/ardusim
//
// With "stats_view": "localhost:12600" in config.json the charts are at
// http://localhost:12600/debug/statsview and pprof at /debug/pprof/.
package statsview

// Path is where the charts are served.
const Path = "/debug/statsview"
