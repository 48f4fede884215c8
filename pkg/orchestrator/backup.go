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

func (this *Orchestrator) ListBackups(ctx context.Context) Response {
	return this.list(ctx, accessor.Backups)
}

// CreateBackup creates a backup of the requested namespaces to the default storage location.
func (this *Orchestrator) CreateBackup(ctx context.Context, req BackupRequest) Response {
	log := this.WithField("backup", req.Name)
	log.Debugf("Incoming backup request: %+v", req)

	if req.Name == "" {
		return messageResponse(http.StatusInternalServerError, "Failed to create backup. metadata_name is required")
	}
	matchLabels, err := ParseLabels(req.Labels)
	if err != nil {
		log.WithError(err).Error("Invalid backup request")
		return messageResponse(http.StatusInternalServerError, "Failed to create backup. %v", err)
	}
	ttl, err := parseTTL(req.TTL)
	if err != nil {
		log.WithError(err).Error("Invalid backup request")
		return messageResponse(http.StatusInternalServerError, "Failed to create backup. %v", err)
	}

	backup := builder.ForBackup(this.accessor.Namespace(), req.Name).
		IncludedNamespaces(req.IncludedNamespaces...).
		TTL(ttl).
		MatchLabels(matchLabels).
		ForDefaultLocation().
		Result()

	outcome := this.accessor.Create(ctx, accessor.Backups, backup)
	this.metrics.RecordOperation(string(accessor.Backups), createOperation, outcome.Success)
	if !outcome.Success {
		return messageResponse(http.StatusInternalServerError, "Failed to create backup. %s", outcome.Message)
	}
	return messageResponse(http.StatusOK, "Backup %s created successfully", req.Name)
}

// DeleteBackup asks Velero to delete the backup and its data through a DeleteBackupRequest.
func (this *Orchestrator) DeleteBackup(ctx context.Context, name string) Response {
	if name == "" {
		return nameRequired(accessor.Backups)
	}
	request := builder.ForDeleteBackupRequest(this.accessor.Namespace(), name).Result()
	outcome := this.accessor.Create(ctx, accessor.DeleteBackupRequests, request)
	return this.deleteResponse(accessor.Backups, name, outcome)
}

func (this *Orchestrator) BackupLogs(ctx context.Context, name string) Response {
	return this.logs(ctx, accessor.Backups, name)
}

func (this *Orchestrator) DescribeBackup(ctx context.Context, name string) Response {
	return this.describe(ctx, accessor.Backups, name)
}
