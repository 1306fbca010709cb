// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/configuration"
	"github.com/krisys/krisys/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "krisys.leveldb"

	defaultRefreshInterval = 60 // seconds
	defaultFlushInterval   = 30 // seconds

	defaultLogDirectory = "log"
	defaultLogFile      = "krisysd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - location of the LevelDB store
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// Configuration - krisysd configuration file
type Configuration struct {
	DataDirectory   string                  `gluamapper:"data_directory" json:"data_directory"`
	PidFile         string                  `gluamapper:"pidfile" json:"pidfile"`
	Database        DatabaseType            `gluamapper:"database" json:"database"`
	Authority       authority.Configuration `gluamapper:"authority" json:"authority"`
	TrustedKeyFile  string                  `gluamapper:"trusted_key_file" json:"trusted_key_file"`
	RefreshInterval int                     `gluamapper:"refresh_interval" json:"refresh_interval"` // seconds
	FlushInterval   int                     `gluamapper:"flush_interval" json:"flush_interval"`     // seconds
	CrisisID        string                  `gluamapper:"crisis_id" json:"crisis_id"`
	DeviceID        string                  `gluamapper:"device_id" json:"device_id"`
	Logging         logger.Configuration    `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {
	options := &Configuration{
		DataDirectory:   defaultDataDirectory,
		PidFile:         "", // no PidFile by default
		RefreshInterval: defaultRefreshInterval,
		FlushInterval:   defaultFlushInterval,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Authority: authority.Configuration{
			Timeout: authority.DefaultTimeout,
			Rate:    authority.DefaultRate,
			Burst:   authority.DefaultBurst,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	dataDirectory, err := configuration.DataDirectory(configurationFileName, options.DataDirectory)
	if nil != err {
		return nil, err
	}
	options.DataDirectory = dataDirectory

	if options.RefreshInterval < 0 || options.FlushInterval < 0 {
		return nil, fmt.Errorf("intervals: refresh: %d  flush: %d must not be negative", options.RefreshInterval, options.FlushInterval)
	}

	// optional absolute paths i.e. blank or an absolute path
	for _, f := range []*string{
		&options.PidFile,
		&options.TrustedKeyFile,
	} {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// simple file names only, placed in their directory
	for _, name := range []string{options.Database.Name, options.Logging.File} {
		if !configuration.PlainFileName(name) {
			return nil, fmt.Errorf("files: %q is not plain name", name)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		if *d, err = util.EnsureDirectory(options.DataDirectory, *d); nil != err {
			return nil, err
		}
	}
	options.Database.Name = util.EnsureAbsolute(options.Database.Directory, options.Database.Name)

	return options, nil
}
