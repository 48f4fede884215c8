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

func (this *Orchestrator) ListSchedules(ctx context.Context) Response {
	return this.list(ctx, accessor.Schedules)
}

// CreateSchedule creates a schedule whose backups follow the same rules as CreateBackup.
func (this *Orchestrator) CreateSchedule(ctx context.Context, req ScheduleRequest) Response {
	log := this.WithField("schedule", req.Name)
	log.Debugf("Incoming schedule request: %+v", req)

	if req.Name == "" {
		return messageResponse(http.StatusInternalServerError, "Failed to create schedule. metadata_name is required")
	}
	if err := validateSchedule(req.Schedule); err != nil {
		log.WithError(err).Error("Invalid schedule request")
		return messageResponse(http.StatusInternalServerError, "Failed to create schedule. %v", err)
	}
	matchLabels, err := ParseLabels(req.Labels)
	if err != nil {
		log.WithError(err).Error("Invalid schedule request")
		return messageResponse(http.StatusInternalServerError, "Failed to create schedule. %v", err)
	}
	ttl, err := parseTTL(req.TTL)
	if err != nil {
		log.WithError(err).Error("Invalid schedule request")
		return messageResponse(http.StatusInternalServerError, "Failed to create schedule. %v", err)
	}

	schedule := builder.ForSchedule(this.accessor.Namespace(), req.Name).
		CronSchedule(req.Schedule).
		IncludedNamespaces(req.IncludedNamespaces...).
		TTL(ttl).
		MatchLabels(matchLabels).
		ForDefaultLocation().
		Result()

	outcome := this.accessor.Create(ctx, accessor.Schedules, schedule)
	this.metrics.RecordOperation(string(accessor.Schedules), createOperation, outcome.Success)
	if !outcome.Success {
		return messageResponse(http.StatusInternalServerError, "Failed to create schedule. %s", outcome.Message)
	}
	return messageResponse(http.StatusOK, "Schedule %s created successfully", req.Name)
}

func (this *Orchestrator) DeleteSchedule(ctx context.Context, name string) Response {
	return this.delete(ctx, accessor.Schedules, name)
}

func (this *Orchestrator) DescribeSchedule(ctx context.Context, name string) Response {
	return this.describe(ctx, accessor.Schedules, name)
}
