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
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationError is returned for a request rejected before any remote call.
type ValidationError struct {
	errMsg string
}

func (this *ValidationError) Error() string {
	return this.errMsg
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{errMsg: fmt.Sprintf(format, args...)}
}

// ParseLabels turns "key=value" entries into match labels. The key is the
// text before the first "=", the value is the rest. Empty entries are skipped.
func ParseLabels(labels []string) (map[string]string, error) {
	matchLabels := make(map[string]string)
	for _, label := range labels {
		if label == "" {
			continue
		}
		parts := strings.SplitN(label, "=", 2)
		if len(parts) != 2 {
			return nil, newValidationError("Labels are not following the format <key>=<value>,<key>=<value>...")
		}
		if parts[0] == "" {
			return nil, newValidationError("Labels are not following the format <key>=<value>. Key cannot be empty")
		}
		matchLabels[parts[0]] = parts[1]
	}
	return matchLabels, nil
}

// parseTTL accepts a Go duration such as "720h0m0s". An empty string leaves the TTL unset.
func parseTTL(ttl string) (time.Duration, error) {
	if ttl == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return 0, newValidationError("invalid ttl %q: %v", ttl, err)
	}
	if d < 0 {
		return 0, newValidationError("invalid ttl %q: must not be negative", ttl)
	}
	return d, nil
}

// validateSchedule accepts a standard five field cron expression or a descriptor such as "@daily".
func validateSchedule(expression string) error {
	if expression == "" {
		return newValidationError("spec_schedule is required")
	}
	if _, err := cron.ParseStandard(expression); err != nil {
		return newValidationError("invalid schedule %q: %v", expression, err)
	}
	return nil
}
