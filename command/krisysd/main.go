// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/background"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/engine"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/mode"
	"github.com/krisys/krisys/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// last chance logging for start up failures
	err = fault.Initialise()
	if nil != err {
		exitwithstatus.Message("%s: fault initialise failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// set the initial system mode - before any background tasks are started
	fault.PanicIfError("mode initialise", mode.Initialise())
	defer mode.Finalise()

	log.Infof("database: %q", theConfiguration.Database.Name)
	db, err := storage.OpenLevelDB(theConfiguration.Database.Name, false)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer db.Close()

	// the authority is optional: a device may only ever see peers
	var source authority.Authority
	if "" != theConfiguration.Authority.URL {
		client, err := authority.NewClient(&theConfiguration.Authority)
		if nil != err {
			log.Criticalf("authority: %q  error: %s", theConfiguration.Authority.URL, err)
			exitwithstatus.Message("authority: %q  error: %s", theConfiguration.Authority.URL, err)
		}
		source = client
		log.Infof("authority: %s", client.URL())
	} else {
		log.Warn("no authority configured: peer sync only")
	}

	var key *blockrecord.TrustedKey
	if "" != theConfiguration.TrustedKeyFile {
		key, err = loadTrustedKey(theConfiguration.TrustedKeyFile)
		if nil != err {
			log.Criticalf("trusted key: %q  error: %s", theConfiguration.TrustedKeyFile, err)
			exitwithstatus.Message("trusted key: %q  error: %s", theConfiguration.TrustedKeyFile, err)
		}
		log.Infof("trusted key: %s", key.Fingerprint())
	}

	device, err := engine.New(&engine.Configuration{
		Handle:    db,
		Authority: source,
		Key:       key,
		DeviceID:  theConfiguration.DeviceID,
		CrisisID:  theConfiguration.CrisisID,
	})
	if nil != err {
		log.Criticalf("engine initialise error: %s", err)
		exitwithstatus.Message("engine initialise error: %s", err)
	}

	// reload the key when the operator replaces the file
	if "" != theConfiguration.TrustedKeyFile {
		channel := WatcherChannel{
			change: make(chan struct{}, 1),
			remove: make(chan struct{}, 1),
		}
		watcher, err := newFileWatcher(theConfiguration.TrustedKeyFile, logger.New("key-watcher"), channel)
		if nil == err {
			err = watcher.Start()
		}
		if nil != err {
			log.Errorf("trusted key watcher error: %s", err)
		} else {
			defer watcher.Stop()
			go reloadKeys(log, device, theConfiguration.TrustedKeyFile, channel)
		}
	}

	processes := device.Processes(
		time.Duration(theConfiguration.RefreshInterval)*time.Second,
		time.Duration(theConfiguration.FlushInterval)*time.Second,
		false,
	)
	if nil != source {
		p := background.Start(processes, nil)
		defer p.Stop()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	mode.Set(mode.Stopped)
}

func reloadKeys(log *logger.L, device *engine.Engine, fileName string, channel WatcherChannel) {
	for {
		select {
		case <-channel.change:
			key, err := loadTrustedKey(fileName)
			if nil != err {
				log.Errorf("trusted key reload: %q  error: %s", fileName, err)
				continue
			}
			device.SetTrustedKey(key)
		case <-channel.remove:
			log.Warnf("trusted key: %q removed, keeping: %s", fileName, device.TrustedKey().Fingerprint())
		}
	}
}
