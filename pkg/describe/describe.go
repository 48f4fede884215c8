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

// Package describe renders Velero resources as flat text reports.
package describe

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/velero-ui/velero-ui/pkg/accessor"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// leadingKeys are printed first, in this order. Other top-level keys follow sorted.
var leadingKeys = []string{"apiVersion", "kind", "metadata", "spec", "status"}

// Describe flattens obj one level deep: a scalar becomes "key: value", a
// mapping becomes "key:" followed by indented "inner: value" lines. Values
// nested deeper are printed as compact JSON.
func Describe(obj map[string]interface{}) string {
	var sb strings.Builder
	for _, key := range orderedKeys(obj) {
		value := obj[key]
		inner, ok := value.(map[string]interface{})
		if !ok {
			fmt.Fprintf(&sb, "%s: %s\n", key, formatValue(value))
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", key)
		for _, innerKey := range sortedKeys(inner) {
			fmt.Fprintf(&sb, "  %s: %s\n", innerKey, formatValue(inner[innerKey]))
		}
	}
	return sb.String()
}

// DescribeNamed describes the named resource of the kind. A resource that is
// not listed, or disappears before it is re-read, yields an empty string.
func DescribeNamed(ctx context.Context, a *accessor.Accessor, kind accessor.Kind, name string) (string, error) {
	items, err := a.List(ctx, kind)
	if err != nil {
		return "", err
	}

	for _, item := range items {
		if item.GetName() != name {
			continue
		}
		current, err := a.Get(ctx, kind, name)
		if err != nil {
			if apierrors.IsNotFound(err) {
				return "", nil
			}
			return "", err
		}
		return Describe(current.UnstructuredContent()), nil
	}
	return "", nil
}

func orderedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	leading := make(map[string]bool, len(leadingKeys))
	for _, key := range leadingKeys {
		leading[key] = true
		if _, ok := obj[key]; ok {
			keys = append(keys, key)
		}
	}
	rest := make([]string, 0, len(obj))
	for key := range obj {
		if !leading[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}
