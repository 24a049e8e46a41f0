/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFlag = "config"

type BaseConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// InitializeConfig loads the config of a binary into targetStruct.
//
// Config is read from a yml file at defaultPath unless the --config flag names another one. Keys found in
// defaultConfig but not in the file keep their default. Env vars override any key viper already knows about:
// the env var is the upper cased key with "." replaced by "_", so annotation.css_selector is read from
// ANNOTATION_CSS_SELECTOR.
//
// Flags defined on pflag.CommandLine before the call are bound by name, so a binary can expose any key as a
// flag as well.
//
// log_level and log_format are applied to the global zerolog logger.
func InitializeConfig(defaultPath string, defaultConfig map[string]interface{}, targetStruct interface{}) error {
	return LoadConfig(viper.GetViper(), pflag.CommandLine, os.Args[1:], defaultPath, defaultConfig, targetStruct)
}

// LoadConfig is InitializeConfig on an explicit viper instance and flag set.
func LoadConfig(v *viper.Viper, flags *pflag.FlagSet, args []string, defaultPath string, defaultConfig map[string]interface{}, targetStruct interface{}) error {
	if flags.Lookup(configFlag) == nil {
		flags.String(configFlag, defaultPath, "The config file path.")
	}
	if !flags.Parsed() {
		if err := flags.Parse(args); err != nil {
			return err
		}
	}
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	configFile := v.GetString(configFlag)
	if !filepath.IsAbs(configFile) {
		var err error
		if configFile, err = filepath.Abs(configFile); err != nil {
			return err
		}
	}

	for k, val := range defaultConfig {
		v.SetDefault(k, val)
	}

	v.SetConfigName(strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile)))
	v.AddConfigPath(filepath.Dir(configFile))

	// env vars are only consulted for keys viper already knows
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		log.Warn().Err(err).Msg("default settings applied")
	} else if err != nil {
		return err
	}

	var bc BaseConfig
	if err := v.Unmarshal(&bc); err != nil {
		return err
	}
	if err := ConfigureLogging(bc.LogLevel, bc.LogFormat); err != nil {
		return err
	}

	return v.Unmarshal(targetStruct)
}
