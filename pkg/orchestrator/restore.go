/*
Copyright 2020 the Velero contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package orchestrator

import (
	"context"
	"net/http"

	"github.com/velero-ui/velero-ui/pkg/accessor"
	"github.com/velero-ui/velero-ui/pkg/builder"
)

func (this *Orchestrator) ListRestores(ctx context.Context) Response {
	return this.list(ctx, accessor.Restores)
}

/*
 * CreateRestore restores either a backup or the latest successful backup of
 * a schedule. Velero resolves a schedule to its backup, so the schedule name
 * is handed over as is.
 */
func (this *Orchestrator) CreateRestore(ctx context.Context, req RestoreRequest) Response {
	if req.BackupName != "" && req.ScheduleName != "" {
		return errorResponse(http.StatusBadRequest, "Invalid request. You can only provide either backupName or scheduleName.")
	}

	var sourceType, sourceName string
	restoreBuilder := builder.ForRestore(this.accessor.Namespace(), "").RestorePVs(true)
	switch {
	case req.BackupName != "":
		sourceType, sourceName = "backup", req.BackupName
		restoreBuilder.Backup(sourceName)
	case req.ScheduleName != "":
		sourceType, sourceName = "schedule", req.ScheduleName
		restoreBuilder.Schedule(sourceName)
	default:
		return errorResponse(http.StatusBadRequest, "Invalid request. Please provide either backupName or scheduleName.")
	}
	restore := restoreBuilder.Result()
	restore.Name = this.restoreName(sourceName)

	this.WithField("restore", restore.Name).Infof("Restoring from %s %s", sourceType, sourceName)
	outcome := this.accessor.Create(ctx, accessor.Restores, restore)
	this.metrics.RecordOperation(string(accessor.Restores), createOperation, outcome.Success)
	if !outcome.Success {
		return messageResponse(http.StatusInternalServerError, "Restore from %s %s failed to create. %s",
			sourceType, sourceName, outcome.Message)
	}
	return messageResponse(http.StatusOK, "Restore from %s %s created successfully", sourceType, sourceName)
}

func (this *Orchestrator) DeleteRestore(ctx context.Context, name string) Response {
	return this.delete(ctx, accessor.Restores, name)
}

func (this *Orchestrator) RestoreLogs(ctx context.Context, name string) Response {
	return this.logs(ctx, accessor.Restores, name)
}

func (this *Orchestrator) DescribeRestore(ctx context.Context, name string) Response {
	return this.describe(ctx, accessor.Restores, name)
}
