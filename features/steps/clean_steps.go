//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"accent-detector/cmd"
	"accent-detector/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

var activeRun *filesystem.Run

func InitializeCleanScenario(ctx *godog.ScenarioContext) {
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if activeRun != nil {
			activeRun.Remove()
			activeRun = nil
		}
		return c, nil
	})

	ctx.Step(`^(\d+) stale run directories$`, staleRunDirectories)
	ctx.Step(`^an active run$`, anActiveRun)
	ctx.Step(`^I clean the work directory$`, iCleanTheWorkDirectory)
	ctx.Step(`^the clean should succeed$`, theCleanShouldSucceed)
	ctx.Step(`^the clean should fail because runs are in progress$`, theCleanShouldFailBecauseRunsAreInProgress)
	ctx.Step(`^the active run should still exist$`, theActiveRunShouldStillExist)
}

func staleRunDirectories(count int) error {
	for i := 0; i < count; i++ {
		dir := filepath.Join(SharedWorld.workspace.RunsDir(), fmt.Sprintf("stale-%d", i))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func anActiveRun() error {
	run, err := SharedWorld.workspace.NewRun(context.Background())
	if err != nil {
		return err
	}
	activeRun = run
	return nil
}

func iCleanTheWorkDirectory() error {
	SharedWorld.err = cmd.RunCleanWithDependencies(SharedWorld.workspace, SharedWorld.output)
	return nil
}

func theCleanShouldSucceed() error {
	if SharedWorld.err != nil {
		return fmt.Errorf("unexpected error: %v", SharedWorld.err)
	}
	return nil
}

func theCleanShouldFailBecauseRunsAreInProgress() error {
	if SharedWorld.err == nil || !strings.Contains(SharedWorld.err.Error(), "runs are in progress") {
		return fmt.Errorf("expected busy error, got %v", SharedWorld.err)
	}
	return nil
}

func theActiveRunShouldStillExist() error {
	if _, err := os.Stat(activeRun.Dir); err != nil {
		return fmt.Errorf("active run was removed: %v", err)
	}
	return nil
}
