package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/stagewatch/internal/ctxlog"
	"github.com/vk/stagewatch/internal/definition"
	"github.com/vk/stagewatch/internal/layout"
	"github.com/vk/stagewatch/internal/render"
	"github.com/vk/stagewatch/internal/snapshot"
)

var errNoService = errors.New("no execution service configured: set -service-url or service.base_url")

// Run executes the mode the CLI selected.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.cfg.HealthcheckPort > 0 {
		a.startHealthcheck(ctx, a.cfg.HealthcheckPort)
	}

	switch {
	case a.cfg.Start:
		return a.startRun(ctx)
	case a.cfg.Cancel:
		return a.cancelRun(ctx)
	case a.cfg.Retry:
		return a.retryRun(ctx)
	case a.cfg.RunID != "" && a.cfg.LogID != 0:
		return a.showLog(ctx)
	case a.cfg.RunID != "":
		return a.showRun(ctx)
	default:
		return a.showPipeline(ctx)
	}
}

// showPipeline renders the dependency diagram of a pipeline definition
// without touching any run.
func (a *App) showPipeline(ctx context.Context) error {
	text, err := a.definitionText(ctx)
	if err != nil {
		return err
	}
	stages := definition.Extract(text)
	a.logger.Debug("Definition extracted.", "stage_count", len(stages))

	items := make([]layout.Item, 0, len(stages))
	for _, s := range stages {
		items = append(items, layout.Item{Name: s.Name, DisplayName: s.DisplayName, DependsOn: s.DependsOn})
	}
	fmt.Fprint(a.outW, render.Diagram(layout.Columns(items)))
	return nil
}

// showRun renders a run's stage tree, either once or following it live
// until the run completes.
func (a *App) showRun(ctx context.Context) error {
	if a.svc == nil {
		return errNoService
	}
	defs := a.stageDefs(ctx)

	if !a.cfg.Follow {
		run, err := a.svc.GetRun(ctx, a.cfg.RunID)
		if err != nil {
			return fmt.Errorf("loading run %s: %w", a.cfg.RunID, err)
		}
		records, err := a.svc.GetTimeline(ctx, a.cfg.RunID)
		if err != nil {
			return fmt.Errorf("loading run %s: %w", a.cfg.RunID, err)
		}
		view := snapshot.BuildView(run, records, defs)
		fmt.Fprint(a.outW, render.Tree(view))
		fmt.Fprintln(a.outW)
		fmt.Fprint(a.outW, render.Diagram(view.Columns))
		return nil
	}

	session, err := a.coord.OpenStatus(ctx, a.cfg.RunID, defs, func(view *snapshot.View) {
		fmt.Fprint(a.outW, render.Tree(view))
		fmt.Fprintln(a.outW)
	})
	if err != nil {
		return fmt.Errorf("following run %s: %w", a.cfg.RunID, err)
	}
	defer session.Close()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-session.Done():
		return nil
	}
}

// showLog prints one log of a run, either once or tailing it live.
func (a *App) showLog(ctx context.Context) error {
	if a.svc == nil {
		return errNoService
	}

	if !a.cfg.Follow {
		content, err := a.svc.GetLogContent(ctx, a.cfg.RunID, a.cfg.LogID)
		if err != nil {
			return fmt.Errorf("loading log %d of run %s: %w", a.cfg.LogID, a.cfg.RunID, err)
		}
		fmt.Fprint(a.outW, content)
		return nil
	}

	session, err := a.coord.OpenLog(ctx, a.cfg.RunID, a.cfg.LogID, func(delta string) {
		fmt.Fprint(a.outW, delta)
	})
	if err != nil {
		return fmt.Errorf("tailing log %d of run %s: %w", a.cfg.LogID, a.cfg.RunID, err)
	}
	defer session.Close()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-session.Done():
		return nil
	}
}

func (a *App) startRun(ctx context.Context) error {
	if a.svc == nil {
		return errNoService
	}
	run, err := a.svc.StartRun(ctx, a.cfg.PipelineID)
	if err != nil {
		return fmt.Errorf("starting pipeline %s: %w", a.cfg.PipelineID, err)
	}
	a.logger.Info("Run queued.", "run_id", run.ID, "pipeline", a.cfg.PipelineID)
	fmt.Fprintf(a.outW, "run %s queued\n", run.ID)

	if a.cfg.Follow {
		a.cfg.RunID = run.ID
		return a.showRun(ctx)
	}
	return nil
}

func (a *App) cancelRun(ctx context.Context) error {
	if a.svc == nil {
		return errNoService
	}
	if err := a.svc.CancelRun(ctx, a.cfg.RunID); err != nil {
		return fmt.Errorf("cancelling run %s: %w", a.cfg.RunID, err)
	}
	fmt.Fprintf(a.outW, "run %s cancellation requested\n", a.cfg.RunID)
	return nil
}

func (a *App) retryRun(ctx context.Context) error {
	if a.svc == nil {
		return errNoService
	}
	run, err := a.svc.RetryRun(ctx, a.cfg.RunID)
	if err != nil {
		return fmt.Errorf("retrying run %s: %w", a.cfg.RunID, err)
	}
	fmt.Fprintf(a.outW, "run %s queued\n", run.ID)
	return nil
}

// stageDefs extracts stage definitions for the selected pipeline on a
// best-effort basis. A run still renders without them, just with no
// dependency edges, so failures only warn.
func (a *App) stageDefs(ctx context.Context) []definition.Stage {
	if a.cfg.PipelineID == "" {
		return nil
	}
	text, err := a.definitionText(ctx)
	if err != nil {
		a.logger.Warn("Definition unavailable, rendering without dependency edges.", "pipeline", a.cfg.PipelineID, "error", err)
		return nil
	}
	return definition.Extract(text)
}

// definitionText resolves the pipeline id against local files first, then
// the execution service.
func (a *App) definitionText(ctx context.Context) (string, error) {
	text, fileErr := a.files.Definition(ctx, a.cfg.PipelineID)
	if fileErr == nil {
		return text, nil
	}
	if a.client != nil {
		text, svcErr := a.client.Definition(ctx, a.cfg.PipelineID)
		if svcErr != nil {
			return "", fmt.Errorf("resolving pipeline %s: %w", a.cfg.PipelineID, svcErr)
		}
		return text, nil
	}
	return "", fmt.Errorf("resolving pipeline %s: %w", a.cfg.PipelineID, fileErr)
}
