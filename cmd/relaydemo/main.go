// Command relaydemo runs the worked scenarios that exercise relay's
// core primitives end to end: a resettable barrier rendezvous, a
// latch-gated worker, a five-worker pool draining ten jobs, callback
// ordering, mid-run cancellation, and duplicate-add suppression. It is
// an application built on top of the relay library, not a surface of
// the library itself.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nordgate/relay"
)

func main() {
	if err := buildCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildCLI() *cobra.Command {
	root := &cobra.Command{
		Use:   "relaydemo",
		Short: "Run relay's worked concurrency scenarios",
	}

	run := &cobra.Command{
		Use:       "run [s1|s2|s3|s4|s5|s6]",
		Short:     "Run one scenario by name",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"s1", "s2", "s3", "s4", "s5", "s6"},
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, ok := scenarios[args[0]]
			if !ok {
				return fmt.Errorf("unknown scenario %q", args[0])
			}
			scenario()
			return nil
		},
	}

	root.AddCommand(run)
	return root
}

var scenarios = map[string]func(){
	"s1": scenarioBarrier,
	"s2": scenarioLatch,
	"s3": scenarioPool,
	"s4": scenarioCallbackOrder,
	"s5": scenarioCancelMidRun,
	"s6": scenarioDuplicateAdd,
}

// scenarioBarrier is S1: two workers plus main rendezvous twice on a
// pair of barriers, re-using them across rounds via Reset.
func scenarioBarrier() {
	start := relay.NewBarrier(2)
	finished := relay.NewBarrier(3)

	worker := func(id int) {
		start.Block()
		for i := 0; i < 10; i++ {
			time.Sleep(100 * time.Millisecond)
		}
		fmt.Printf("relaydemo: worker %d finished round\n", id)
		finished.Block()
	}

	round := func() {
		go worker(1)
		go worker(2)
		finished.Block()
	}

	begin := time.Now()
	round()
	start.Reset()
	finished.Reset()
	round()
	fmt.Printf("relaydemo: two rounds took %s\n", time.Since(begin))
}

// scenarioLatch is S2: a worker blocks on a latch until main releases
// it roughly two seconds later.
func scenarioLatch() {
	block := relay.NewBlock(false)
	begin := time.Now()

	done := make(chan struct{})
	go func() {
		block.Block()
		fmt.Printf("relaydemo: STARTING after %s\n", time.Since(begin))
		close(done)
	}()

	time.Sleep(2 * time.Second)
	block.Release()
	<-done
}

// scenarioPool is S3: a five-worker pool drains ten two-second jobs.
func scenarioPool() {
	p := relay.NewPool(relay.Config{MaxWorkers: 5}, zap.NewNop(), nil)
	begin := time.Now()

	for i := 0; i < 10; i++ {
		id := i
		j := relay.NewJob(fmt.Sprintf("job-%d", id), func(j *relay.Job, interrupt func()) {
			interrupt()
			time.Sleep(2 * time.Second)
		}, nil)
		p.AddJob(j, false)
	}

	for p.HasJobsToProcess() {
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Printf("relaydemo: pool drained 10 jobs across 5 workers in %s\n", time.Since(begin))
	p.Cancel()
	p.WaitForCompletion()
}

// scenarioCallbackOrder is S4: a job's callback logs started then
// finished, exactly once each. No ready event is logged: the job is
// already READY when the callback is attached, and re-asserting READY
// is not a state edge.
func scenarioCallbackOrder() {
	var mu sync.Mutex
	var events []string
	log := func(name string) {
		mu.Lock()
		events = append(events, name)
		mu.Unlock()
	}

	j := relay.NewJob("order-demo", func(j *relay.Job, interrupt func()) {
		interrupt()
	}, nil)
	j.SetCallback(&relay.FuncJobCallback{
		OnReady:    func(*relay.Job) { log("ready") },
		OnStarted:  func(*relay.Job) { log("started") },
		OnFinished: func(*relay.Job) { log("finished") },
	})

	j.Start(func() {})
	fmt.Printf("relaydemo: callback order = %v\n", events)
}

// scenarioCancelMidRun is S5: a long-looping job is canceled 50ms in
// and unwinds within one sleep quantum.
func scenarioCancelMidRun() {
	t := relay.NewThread(nil)
	begin := time.Now()

	_ = t.Start(func(t *relay.Thread) {
		for i := 0; i < 1000; i++ {
			time.Sleep(10 * time.Millisecond)
			t.Interrupt()
		}
	})

	time.Sleep(50 * time.Millisecond)
	t.Cancel()
	t.WaitForCompletion()
	fmt.Printf("relaydemo: worker unwound %s after start\n", time.Since(begin))
}

// scenarioDuplicateAdd is S6: adding the same job twice with
// unique=true is a no-op the second time.
func scenarioDuplicateAdd() {
	q := relay.NewJobQueue(nil)
	j := relay.NewJob("dup-demo", nil, nil)

	q.Add(j, false)
	q.Add(j, true)
	fmt.Printf("relaydemo: queue size after duplicate add = %d\n", q.Size())

	first := q.NextJob(false)
	second := q.NextJob(false)
	fmt.Printf("relaydemo: first=%v second=%v\n", first != nil, second != nil)
}
