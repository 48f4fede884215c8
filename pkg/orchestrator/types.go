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
	"fmt"
	"net/http"
)

// BackupRequest is the payload of a backup creation.
type BackupRequest struct {
	Name               string   `json:"metadata_name"`
	IncludedNamespaces []string `json:"spec_includedNamespaces"`
	TTL                string   `json:"spec_ttl"`
	Labels             []string `json:"spec_labels"`
}

// ScheduleRequest is the payload of a schedule creation. The backup fields
// describe the template of every scheduled backup.
type ScheduleRequest struct {
	BackupRequest
	Schedule string `json:"spec_schedule"`
}

// RestoreRequest is the payload of a restore creation. Exactly one of the names must be set.
type RestoreRequest struct {
	BackupName   string `json:"backupName"`
	ScheduleName string `json:"scheduleName"`
}

// Response is what every facade operation returns: an HTTP status and a JSON body.
type Response struct {
	Status int
	Body   interface{}
}

func messageResponse(status int, format string, args ...interface{}) Response {
	return Response{
		Status: status,
		Body:   map[string]string{"message": fmt.Sprintf(format, args...)},
	}
}

func errorResponse(status int, msg string) Response {
	return Response{
		Status: status,
		Body:   map[string]string{"error": msg},
	}
}

func logsResponse(text string) Response {
	return Response{
		Status: http.StatusOK,
		Body:   map[string]string{"logs": text},
	}
}

func itemsResponse(items []map[string]interface{}) Response {
	return Response{
		Status: http.StatusOK,
		Body:   map[string]interface{}{"items": items},
	}
}
