// Copyright 2025 The refsync Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"github.com/spf13/cast"

	"github.com/refsync/refsync/capability"
	"github.com/refsync/refsync/confengine"
	"github.com/refsync/refsync/logger"
)

// fileConfig is the optional YAML configuration loaded via --config. Flags
// always take precedence; this only supplies logging defaults and extra
// push capabilities an operator wants attached on every run.
type fileConfig struct {
	Logger logger.Options `config:"logger"`
	Push   struct {
		// ExtraCapabilities is untyped because go-ucfg hands back
		// whatever scalar kind the YAML author wrote (a bare token or a
		// quoted string); cast.ToStringE normalizes either.
		ExtraCapabilities []any `config:"extraCapabilities"`
	} `config:"push"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	cfg, err := confengine.LoadConfigPath(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := cfg.Unpack(&fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// extraPushCapabilities resolves the configured capability tokens,
// silently discarding anything that doesn't cast to a string or doesn't
// name a recognized capability.
func (fc *fileConfig) extraPushCapabilities() []capability.Attachment {
	var out []capability.Attachment
	for _, v := range fc.Push.ExtraCapabilities {
		s, err := cast.ToStringE(v)
		if err != nil {
			continue
		}
		c, ok := capability.Parse(s)
		if !ok {
			continue
		}
		out = append(out, capability.With(c))
	}
	return out
}
