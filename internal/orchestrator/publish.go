// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"context"
	"log/slog"

	"github.com/Azure/swagger-to-sdk/internal/naming"
	"github.com/Azure/swagger-to-sdk/internal/publish"
	"github.com/Azure/swagger-to-sdk/internal/report"
)

type branchGroup struct {
	branch   string
	message  string
	projects []string
	paths    []string
}

// publish hands the successful results to the publisher, one branch at a
// time, in project order. Only the paths of successful projects are
// committed.
func (o *Orchestrator) publish(ctx context.Context, branchCtx naming.BranchContext, results []report.ProjectResult) []report.PublishResult {
	groups := groupByBranch(o.Namer, branchCtx, results)
	if len(groups) == 0 {
		slog.Info("nothing to publish")
		return nil
	}

	publisher := o.Publisher
	if publisher == nil {
		publisher = publish.NopPublisher{}
	}

	out := make([]report.PublishResult, 0, len(groups))
	for _, grp := range groups {
		outcome, err := publisher.Publish(ctx, publish.Request{
			Branch:   grp.branch,
			Message:  grp.message,
			Projects: grp.projects,
			Paths:    grp.paths,
		})
		pr := report.PublishResult{
			Branch:   grp.branch,
			Commit:   outcome.Commit,
			Skipped:  outcome.Skipped,
			Projects: grp.projects,
			Err:      err,
		}
		if err != nil {
			slog.Error("publish failed", "branch", grp.branch, "error", err)
		} else if !outcome.Skipped {
			markPublished(results, grp.projects)
		}
		out = append(out, pr)
	}
	return out
}

func groupByBranch(namer naming.Namer, branchCtx naming.BranchContext, results []report.ProjectResult) []branchGroup {
	var groups []branchGroup
	index := map[string]int{}
	for _, res := range results {
		if !res.Success() || res.Stage != report.StageStaged {
			continue
		}
		branch, message := namer.Name(branchCtx, res.ProjectID)
		i, ok := index[branch]
		if !ok {
			i = len(groups)
			index[branch] = i
			groups = append(groups, branchGroup{branch: branch, message: message})
		}
		groups[i].projects = append(groups[i].projects, res.ProjectID)
		groups[i].paths = append(groups[i].paths, res.Paths...)
	}
	return groups
}

func markPublished(results []report.ProjectResult, projects []string) {
	for i := range results {
		for _, id := range projects {
			if results[i].ProjectID == id {
				results[i].Stage = report.StagePublished
			}
		}
	}
}
