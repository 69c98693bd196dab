// Command ecsdemo is a narrow harness over the dispatch engine's public
// API: it registers a couple of components and a system, creates a batch
// of entities, and times a run of ticks. It exists to exercise the
// engine, not to demonstrate a game.
package main

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/cobaltgrid/ecsdispatch"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ecsdemo",
	Short: "Exercise the ECS dispatch engine with a synthetic workload",
	RunE:  run,
}

func init() {
	rootCmd.Flags().Int("threads", 0, "worker thread count (0 = run in-line on the caller)")
	rootCmd.Flags().Int("ticks", 60, "number of Update() calls to run")
	rootCmd.Flags().Int("entities", 10000, "number of entities to create")
	rootCmd.Flags().Bool("profile", false, "enable CPU profiling for the run (writes to ./profile/)")
	rootCmd.Flags().Bool("log-json", false, "emit structured logs as JSON instead of console output")
}

type position struct{ X, Y float32 }
type velocity struct{ DX, DY float32 }

func run(cmd *cobra.Command, args []string) error {
	threads, _ := cmd.Flags().GetInt("threads")
	ticks, _ := cmd.Flags().GetInt("ticks")
	entityCount, _ := cmd.Flags().GetInt("entities")
	enableProfile, _ := cmd.Flags().GetBool("profile")
	logJSON, _ := cmd.Flags().GetBool("log-json")

	ecs.InitLogging(ecs.LogConfig{JSONOutput: logJSON})

	if enableProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("./profile")).Stop()
	}

	world := ecs.New(ecs.WithEntities(entityCount), ecs.WithSystems(4))
	defer world.Delete()

	posID := ecs.RegisterComponentType[position](world)
	velID := ecs.RegisterComponentType[velocity](world)

	moving, ok := world.RegisterArchetype("Moving", []string{
		ecs.ComponentTypeName[position](),
		ecs.ComponentTypeName[velocity](),
	})
	if !ok {
		return fmt.Errorf("failed to register archetype")
	}

	world.RegisterSystem(ecs.System("Physics", moving, func(_ ecs.Id, comps []unsafe.Pointer, _ any) {
		pos := (*position)(comps[0])
		vel := (*velocity)(comps[1])
		pos.X += vel.DX
		pos.Y += vel.DY
	}, ecs.ThreadSafe()))

	if threads > 0 {
		world.SetThreads(threads)
	}

	for i := 0; i < entityCount; i++ {
		e := world.NewEntity(moving)
		if ptr := world.GetComponent(e, velID); ptr != nil {
			(*velocity)(ptr).DX = 1
		}
		_ = posID
	}

	start := time.Now()
	for i := 0; i < ticks; i++ {
		world.Update()
	}
	elapsed := time.Since(start)

	fmt.Printf("ran %d ticks over %d entities in %s (%.2f ticks/s)\n",
		ticks, entityCount, elapsed, float64(ticks)/elapsed.Seconds())
	return nil
}
