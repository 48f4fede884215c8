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

// Package orchestrator holds the operations the API server exposes on
// backups, restores, schedules and storage locations.
package orchestrator

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/velero-ui/velero-ui/pkg/accessor"
	"github.com/velero-ui/velero-ui/pkg/constants"
	"github.com/velero-ui/velero-ui/pkg/describe"
	"github.com/velero-ui/velero-ui/pkg/logs"
	"github.com/velero-ui/velero-ui/pkg/metrics"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/utils/clock"
)

const (
	createOperation = "create"
	deleteOperation = "delete"

	// Log retrieval states recorded when the owning resource lookup fails.
	logStateNotFound = "NotFound"
	logStateError    = "Error"
)

// LogRetriever fetches the log of a backup or restore.
type LogRetriever interface {
	GetLog(ctx context.Context, kind accessor.Kind, name string) (*logs.Result, error)
}

type Orchestrator struct {
	logrus.FieldLogger
	accessor  *accessor.Accessor
	retriever LogRetriever
	metrics   *metrics.ServerMetrics
	clock     clock.PassiveClock
}

func NewOrchestrator(accessor *accessor.Accessor, retriever LogRetriever, serverMetrics *metrics.ServerMetrics,
	logger logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		FieldLogger: logger,
		accessor:    accessor,
		retriever:   retriever,
		metrics:     serverMetrics,
		clock:       clock.RealClock{},
	}
}

// title is the singular, capitalized name of a kind used in messages.
func title(kind accessor.Kind) string {
	switch kind {
	case accessor.Backups:
		return "Backup"
	case accessor.Restores:
		return "Restore"
	case accessor.Schedules:
		return "Schedule"
	case accessor.BackupStorageLocations:
		return "Storage location"
	}
	return string(kind)
}

func nameRequired(kind accessor.Kind) Response {
	return messageResponse(http.StatusBadRequest, "%s name is required as a query parameter", title(kind))
}

func (this *Orchestrator) list(ctx context.Context, kind accessor.Kind) Response {
	items, err := this.accessor.List(ctx, kind)
	if err != nil {
		return messageResponse(http.StatusInternalServerError, "Failed to list %s. %v", kind, err)
	}
	body := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		body = append(body, item.UnstructuredContent())
	}
	return itemsResponse(body)
}

func (this *Orchestrator) delete(ctx context.Context, kind accessor.Kind, name string) Response {
	if name == "" {
		return nameRequired(kind)
	}
	outcome := this.accessor.Delete(ctx, kind, name)
	return this.deleteResponse(kind, name, outcome)
}

func (this *Orchestrator) deleteResponse(kind accessor.Kind, name string, outcome accessor.Outcome) Response {
	this.metrics.RecordOperation(string(kind), deleteOperation, outcome.Success)
	if !outcome.Success {
		return messageResponse(http.StatusInternalServerError, "%s %s failed to delete. %s", title(kind), name, outcome.Message)
	}
	return messageResponse(http.StatusOK, "%s %s deleted successfully", title(kind), name)
}

func (this *Orchestrator) describe(ctx context.Context, kind accessor.Kind, name string) Response {
	if name == "" {
		return nameRequired(kind)
	}
	text, err := describe.DescribeNamed(ctx, this.accessor, kind, name)
	if err != nil {
		this.WithError(err).WithFields(logrus.Fields{"kind": kind, "name": name}).Error("Failed to describe resource")
		return messageResponse(http.StatusInternalServerError, "Failed to describe %s %s. %v", title(kind), name, err)
	}
	return logsResponse(text)
}

func (this *Orchestrator) logs(ctx context.Context, kind accessor.Kind, name string) Response {
	if name == "" {
		return nameRequired(kind)
	}
	start := this.clock.Now()
	result, err := this.retriever.GetLog(ctx, kind, name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			this.metrics.RecordLogRetrieval(string(kind), logStateNotFound, this.clock.Since(start))
			return messageResponse(http.StatusNotFound, "%s %s not found", title(kind), name)
		}
		this.metrics.RecordLogRetrieval(string(kind), logStateError, this.clock.Since(start))
		this.WithError(err).WithFields(logrus.Fields{"kind": kind, "name": name}).Error("Failed to retrieve log")
		return messageResponse(http.StatusInternalServerError, "Failed to retrieve log of %s %s. %v", title(kind), name, err)
	}
	this.metrics.RecordLogRetrieval(string(kind), string(result.State), this.clock.Since(start))
	return logsResponse(result.Text)
}

func (this *Orchestrator) restoreName(source string) string {
	return source + "-" + this.clock.Now().Format(constants.RestoreNameTimeFormat)
}

